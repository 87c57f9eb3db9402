package claude

import "strings"

// Text joins the text content blocks of a response into one string.
func Text(resp *Response) string {
	if resp == nil {
		return ""
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
