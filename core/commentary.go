package core

import "time"

// CommentaryEntry is one appended line of the session's commentary log.
// Sequence numbers are assigned by the event hub and are strictly increasing
// with no gaps for the lifetime of one session; that ordering is the
// invariant observers rely on.
type CommentaryEntry struct {
	Seq       uint64    `json:"seq"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}
