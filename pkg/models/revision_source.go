package models

import (
	"context"
	"time"
)

// RevisionRef identifies one entry of an enumerated revision sequence.
// Timestamp must be monotonically non-decreasing across the sequence
// returned by Enumerate.
type RevisionRef struct {
	RevisionID string
	Timestamp  string
	Date       time.Time
}

// RevisionSource is the external collaborator the engine is driven by. It
// is consumed as an interface only: enumeration, directory scanning,
// date-range filtering and CSV parsing are explicitly out of scope for
// this module and left to the caller's implementation.
type RevisionSource interface {
	// Enumerate returns the ordered list of revisions between start and
	// end (inclusive). A nil bound leaves that side of the range open;
	// with both nil the whole history is returned.
	Enumerate(ctx context.Context, start, end *time.Time) ([]RevisionRef, error)

	// Load returns the code blocks and clone pairs recorded for one
	// revision.
	Load(ctx context.Context, revisionID string) ([]CodeBlock, []ClonePair, error)
}
