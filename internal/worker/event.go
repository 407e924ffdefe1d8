package worker

import "github.com/book-expert/events"

// VisemeTimelineCreatedEvent announces a timeline stored for one processed text.
type VisemeTimelineCreatedEvent struct {
	Header      events.EventHeader `json:"header"`
	TimelineKey string             `json:"timeline_key"`
	Format      string             `json:"format"`
	PageNumber  int                `json:"page_number"`
	TotalPages  int                `json:"total_pages"`
	DurationMs  float64            `json:"duration_ms"`
	EventCount  int                `json:"event_count"`
}
