package chat

import "time"

// Conversation is the durable thread identity for an unordered user pair,
// optionally narrowed to one listing. The pair is stored normalized
// (UserLo < UserHi) so equality and uniqueness never depend on who wrote
// first. A nil ListingID means the unscoped thread, which is a distinct scope
// value rather than a wildcard.
type Conversation struct {
	ID             string    `db:"id"`
	UserLo         string    `db:"user_lo"`
	UserHi         string    `db:"user_hi"`
	ListingID      *string   `db:"listing_id"`
	CreatedAt      time.Time `db:"created_at"`
	LastActivityAt time.Time `db:"last_activity_at"`
}

// NormalizePair orders two identities lexicographically.
func NormalizePair(a, b string) (lo, hi string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// NormalizeScope collapses a nil or empty listing scope into nil. Absent and
// empty scopes are the same thing.
func NormalizeScope(listingID *string) *string {
	if listingID == nil || *listingID == "" {
		return nil
	}
	return listingID
}

// ScopeKey returns the scope as a comparable string, "" for the unscoped
// thread.
func ScopeKey(listingID *string) string {
	if s := NormalizeScope(listingID); s != nil {
		return *s
	}
	return ""
}

// HasParticipant tells whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	if c == nil {
		return false
	}
	return c.UserLo == userID || c.UserHi == userID
}

// CounterpartOf returns the other party, or "" when userID is not a
// participant.
func (c *Conversation) CounterpartOf(userID string) string {
	switch {
	case c == nil:
		return ""
	case c.UserLo == userID:
		return c.UserHi
	case c.UserHi == userID:
		return c.UserLo
	default:
		return ""
	}
}
