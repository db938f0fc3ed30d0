package internal

import (
	"fmt"
	"time"
)

// Normalizer converts reconstructed conversations to Session format
type Normalizer struct{}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeConversation converts a ReconstructedConversation to a Session.
// project and strategy carry the attribution result; both may be empty for
// unattributed conversations.
func (n *Normalizer) NormalizeConversation(conv *ReconstructedConversation, project, strategy string) (*Session, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	messages := make([]Message, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		messages = append(messages, n.normalizeMessage(msg))
	}

	metadata := Metadata{
		ComposerID:   conv.ComposerID,
		Name:         conv.Name,
		MessageCount: len(messages),
		AttributedBy: strategy,
	}

	if conv.CreatedAt > 0 {
		metadata.CreatedAt = formatTimestamp(conv.CreatedAt)
	}
	if conv.UpdatedAt > 0 {
		metadata.UpdatedAt = formatTimestamp(conv.UpdatedAt)
	}

	// Use composerId as the session ID (the real session identifier from Cursor)
	return &Session{
		ID:       conv.ComposerID,
		Project:  project,
		Source:   "globalStorage",
		Messages: messages,
		Metadata: metadata,
	}, nil
}

// normalizeMessage converts a ReconstructedMessage to a Message
func (n *Normalizer) normalizeMessage(msg ReconstructedMessage) Message {
	timestamp := ""
	if msg.Timestamp > 0 {
		timestamp = formatTimestamp(msg.Timestamp)
	}

	return Message{
		Timestamp: timestamp,
		Actor:     n.normalizeActor(msg.Type),
		Content:   msg.Text,
	}
}

// normalizeActor converts type (1 or 2) to actor string
func (n *Normalizer) normalizeActor(msgType int) string {
	switch msgType {
	case 1:
		return "user"
	case 2:
		return "assistant"
	default:
		return "user" // Default fallback
	}
}

// formatTimestamp formats a Unix timestamp (milliseconds) to ISO8601
func formatTimestamp(ts int64) string {
	t := time.Unix(0, ts*int64(time.Millisecond))
	return t.Format(time.RFC3339)
}
