// Package persistence records session transcripts: the ordered log of
// accepted contributions a session produced. Replaying a transcript into
// a fresh context store resumes a session after a crash without
// re-running the accepted rounds.
package persistence

import (
	"context"
	"time"

	"github.com/avelkey/paperflow/types"
)

// Entry is one transcript record: a contribution at the moment it was
// accepted, plus the call accounting for that role in that round.
type Entry struct {
	SessionID   string     `json:"session_id"`
	Seq         int        `json:"seq"`
	Round       int        `json:"round"`
	Role        types.Role `json:"role"`
	Text        string     `json:"text"`
	Revision    bool       `json:"revision"`
	Unavailable bool       `json:"unavailable"`
	// Attempts is the number of inference calls made for this
	// contribution; retries = Attempts - 1.
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptStore persists transcript entries in order.
type TranscriptStore interface {
	// Append records an entry at the end of the session's transcript.
	Append(ctx context.Context, entry Entry) error
	// Load returns a session's transcript in append order.
	Load(ctx context.Context, sessionID string) ([]Entry, error)
	// Close releases any underlying resources.
	Close() error
}

// EntryFromContribution converts an accepted contribution to an Entry.
func EntryFromContribution(sessionID string, seq int, c *types.Contribution) Entry {
	return Entry{
		SessionID:   sessionID,
		Seq:         seq,
		Round:       c.Round,
		Role:        c.Role,
		Text:        c.Text,
		Revision:    c.Revision,
		Unavailable: c.Unavailable,
		Attempts:    c.Attempts,
		CreatedAt:   c.CreatedAt,
	}
}

// Replay converts transcript entries back into draft contributions in
// append order, ready to be re-accepted into a fresh context store.
func Replay(entries []Entry) []*types.Contribution {
	out := make([]*types.Contribution, 0, len(entries))
	for _, e := range entries {
		c := types.NewContribution(e.Role, e.Round, e.Text)
		c.Revision = e.Revision
		c.Unavailable = e.Unavailable
		c.Attempts = e.Attempts
		c.References = e.Role.Dependencies()
		out = append(out, c)
	}
	return out
}
