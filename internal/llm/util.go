package llm

import "strings"

// Text joins the text blocks of a response into one string.
func Text(resp *Response) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}
