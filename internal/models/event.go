package models

import "time"

// Kind classifies the observed outcome of one gateway-client interaction.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
	KindRetry   Kind = "retry"
	KindTimeout Kind = "timeout"
)

// Kinds lists every recognized event kind, for validation messages and CLI help.
func Kinds() []Kind {
	return []Kind{KindSuccess, KindFailure, KindRetry, KindTimeout}
}

// Valid reports whether k is one of the recognized event kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindFailure, KindRetry, KindTimeout:
		return true
	}
	return false
}

// ReliabilityEvent represents one recorded outcome of a gateway-client
// interaction attempt. Rows are append-only: the identifier and timestamp are
// assigned at insertion and never rewritten.
type ReliabilityEvent struct {
	ID        int64     `db:"id" json:"id"`
	ClientID  string    `db:"client_id" json:"client_id"`
	Kind      Kind      `db:"kind" json:"kind"`
	Detail    *string   `db:"detail" json:"detail,omitempty"` // NULL when the harness supplied no payload
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EventFilter narrows Query and Count results. Zero values impose no
// constraint; Since/Until bound created_at inclusively on either side.
type EventFilter struct {
	ClientID string
	Kind     Kind
	Since    time.Time
	Until    time.Time
}
