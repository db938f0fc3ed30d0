package internal

import (
	"fmt"
	"strings"
)

// emptyBubblePlaceholder marks bubbles that exist in the store but carry no
// displayable text in any field
const emptyBubblePlaceholder = "[Message with no extractable text content]"

// ExtractTextFromBubble extracts text from a bubble using three-tier strategy:
// 1. Primary: Use bubble.text if available
// 2. Fallback: Walk the bubble.richText structure (including thinking/tool calls)
// 3. Enhancement: Append bubble.codeBlocks[] as markdown code fences
func ExtractTextFromBubble(bubble *RawBubble) (string, error) {
	var textParts []string

	if bubble.Text != "" {
		textParts = append(textParts, bubble.Text)
	}

	// richText can carry thinking and tool content the plain text field omits
	if bubble.RichText != "" {
		richText, err := ExtractTextFromRichText(bubble.RichText)
		if err != nil {
			LogDebug("Failed to parse richText for bubble %s: %v", bubble.BubbleID, err)
		}
		if richText != "" {
			// Only add if it's different from the primary text to avoid duplication
			if bubble.Text == "" || !strings.Contains(bubble.Text, richText) {
				textParts = append(textParts, richText)
			}
		}
	}

	for _, codeBlock := range bubble.CodeBlocks {
		if codeBlock.Content == "" {
			continue
		}
		textParts = append(textParts, fmt.Sprintf("```%s\n%s\n```", codeBlock.Language, codeBlock.Content))
	}

	result := strings.Join(textParts, "\n\n")

	// If we still have no text, return a placeholder to indicate the message exists
	if result == "" {
		return emptyBubblePlaceholder, nil
	}

	return result, nil
}
