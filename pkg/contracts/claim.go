package contracts

import "time"

// Claim is a user-submitted factual assertion to be evaluated by the
// community.
//
// The verdict fields (SupportCount, RefuteCount, UnclearCount, Confidence)
// are a denormalized display cache only. They are recomputed from the
// verification ledger on every read path and any persisted copy is never
// authoritative.
type Claim struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
	Link     string `json:"link,omitempty"`

	// Annotation holds the opaque output of the text-analysis collaborator,
	// captured once at creation time. The verdict engine never reads it.
	Annotation *Annotation `json:"annotation,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	SupportCount int     `json:"support_count"`
	RefuteCount  int     `json:"refute_count"`
	UnclearCount int     `json:"unclear_count"`
	Confidence   float64 `json:"confidence"`
}
