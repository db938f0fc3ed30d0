package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// Deduplicator removes duplicate sessions
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate removes sessions whose message content is identical to one
// already seen. The first occurrence wins.
func (d *Deduplicator) Deduplicate(sessions []*Session) []*Session {
	seen := make(map[string]bool)
	var unique []*Session

	for _, session := range sessions {
		hash := d.hashSessionContent(session)
		if seen[hash] {
			continue
		}
		seen[hash] = true
		unique = append(unique, session)
	}

	if removed := len(sessions) - len(unique); removed > 0 {
		LogDebug("Removed %d duplicate session(s)", removed)
	}

	return unique
}

// hashSessionContent creates a content-based hash for a session
func (d *Deduplicator) hashSessionContent(session *Session) string {
	h := sha256.New()

	for _, msg := range session.Messages {
		h.Write([]byte(msg.Actor))
		h.Write([]byte{0})
		h.Write([]byte(msg.Content))
		h.Write([]byte{0})
		h.Write([]byte(msg.Timestamp))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
