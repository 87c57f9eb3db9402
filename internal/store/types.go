package store

import (
	"context"
	"time"
)

// ActivityWriter records load and render activity. Rendered output is never
// persisted, only outcomes.
type ActivityWriter interface {
	RecordReload(ctx context.Context, rec *ReloadRecord) error
	RecordRender(ctx context.Context, rec *RenderRecord) error
}

// ActivityReader defines read access to recorded activity.
type ActivityReader interface {
	ListReloads(ctx context.Context, limit int) ([]*ReloadRecord, error)
	ListRenders(ctx context.Context, promptName string, limit int) ([]*RenderRecord, error)
	RenderCounts(ctx context.Context) (map[string]int, error)
}

// Store persists promptd activity.
type Store interface {
	ActivityWriter
	ActivityReader
	Close() error
}

// ReloadRecord summarizes one full cache reload.
type ReloadRecord struct {
	ID         int64
	StartedAt  time.Time
	DurationMs int64
	TotalFiles int
	Succeeded  int
	Failed     int
	ErrorCount int
}

// RenderRecord summarizes one render call.
type RenderRecord struct {
	ID         int64
	CreatedAt  time.Time
	PromptName string
	OK         bool
	DurationMs int64
	ErrorCount int
}
