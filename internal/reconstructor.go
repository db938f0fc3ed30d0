package internal

import (
	"fmt"
	"sort"
)

// ReconstructedConversation represents a fully reconstructed conversation
type ReconstructedConversation struct {
	ComposerID string
	Name       string
	Messages   []ReconstructedMessage
	CreatedAt  int64
	UpdatedAt  int64
}

// ReconstructedMessage represents a message in a reconstructed conversation
type ReconstructedMessage struct {
	BubbleID  string
	Type      int // 1=user, 2=assistant
	Text      string
	Timestamp int64
	Context   *MessageContext
}

// Reconstructor rebuilds conversations by joining composer headers
// against their bubble and context records
type Reconstructor struct {
	bubbles    map[string]*RawBubble
	contextMap map[string][]*MessageContext
}

// NewReconstructor creates a Reconstructor over loaded bubbles and contexts
func NewReconstructor(bubbles map[string]*RawBubble, contextMap map[string][]*MessageContext) *Reconstructor {
	return &Reconstructor{
		bubbles:    bubbles,
		contextMap: contextMap,
	}
}

// ReconstructConversation rebuilds one conversation in header order.
// Bubbles referenced by the header but missing from the store are skipped,
// as are bubbles that yield no displayable text.
func (r *Reconstructor) ReconstructConversation(composer *RawComposer) (*ReconstructedConversation, error) {
	if composer == nil {
		return nil, fmt.Errorf("composer is nil")
	}

	conv := &ReconstructedConversation{
		ComposerID: composer.ComposerID,
		Name:       composer.Name,
		CreatedAt:  composer.CreatedAt,
		UpdatedAt:  composer.LastUpdatedAt,
	}

	contextByBubbleID := make(map[string]*MessageContext)
	for _, ctx := range r.contextMap[composer.ComposerID] {
		if ctx.BubbleID != "" {
			contextByBubbleID[ctx.BubbleID] = ctx
		}
	}

	missing := 0
	for _, header := range composer.FullConversationHeadersOnly {
		bubble, ok := r.bubbles[header.BubbleID]
		if !ok {
			missing++
			continue
		}

		text, err := ExtractTextFromBubble(bubble)
		if err != nil {
			LogDebug("Failed to extract text from bubble %s: %v", header.BubbleID, err)
			continue
		}
		if text == "" || text == emptyBubblePlaceholder {
			continue
		}

		msgType := header.Type
		if msgType == 0 {
			msgType = bubble.Type
		}

		conv.Messages = append(conv.Messages, ReconstructedMessage{
			BubbleID:  header.BubbleID,
			Type:      msgType,
			Text:      text,
			Timestamp: bubble.Timestamp,
			Context:   contextByBubbleID[header.BubbleID],
		})
	}

	if missing > 0 {
		LogDebug("Conversation %s references %d bubbles not present in the store", composer.ComposerID, missing)
	}

	// Headers are usually already chronological but bubbles written out of
	// order do occur, so sort by timestamp when one is present
	sort.SliceStable(conv.Messages, func(i, j int) bool {
		if conv.Messages[i].Timestamp == 0 || conv.Messages[j].Timestamp == 0 {
			return false
		}
		return conv.Messages[i].Timestamp < conv.Messages[j].Timestamp
	})

	return conv, nil
}

// ReconstructAllConversations rebuilds every composer that yields at least
// one displayable message
func (r *Reconstructor) ReconstructAllConversations(composers []*RawComposer) ([]*ReconstructedConversation, error) {
	var conversations []*ReconstructedConversation

	for _, composer := range composers {
		conv, err := r.ReconstructConversation(composer)
		if err != nil {
			LogDebug("Failed to reconstruct conversation %s: %v", composer.ComposerID, err)
			continue
		}
		if len(conv.Messages) == 0 {
			continue
		}
		conversations = append(conversations, conv)
	}

	return conversations, nil
}
