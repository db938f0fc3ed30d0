package internal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// RawBubble represents a message bubble record
type RawBubble struct {
	BubbleID   string      `json:"bubbleId"`
	ChatID     string      `json:"chatId"`
	Text       string      `json:"text,omitempty"`
	RichText   string      `json:"richText,omitempty"`
	CodeBlocks []CodeBlock `json:"codeBlocks,omitempty"`
	Timestamp  int64       `json:"timestamp"`
	Type       int         `json:"type"` // 1=user, 2=assistant

	// Raw keeps the undecoded payload; attribution reads its loose file
	// reference fields from here instead of widening the struct.
	Raw string `json:"-"`
}

// CodeBlock represents a code block in a message
type CodeBlock struct {
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

// RawComposer represents conversation metadata from the database
type RawComposer struct {
	ComposerID                  string               `json:"composerId"`
	Name                        string               `json:"name,omitempty"`
	FullConversationHeadersOnly []ConversationHeader `json:"fullConversationHeadersOnly,omitempty"`
	LastUpdatedAt               int64                `json:"lastUpdatedAt,omitempty"`
	CreatedAt                   int64                `json:"createdAt,omitempty"`

	// Raw keeps the undecoded payload for newlyCreatedFiles and
	// codeBlockData signal extraction.
	Raw string `json:"-"`
}

// ConversationHeader represents one entry of the ordered bubble list
type ConversationHeader struct {
	BubbleID string `json:"bubbleId"`
	Type     int    `json:"type"` // 1=user, 2=assistant
}

// MessageContext represents a per-message request snapshot
type MessageContext struct {
	BubbleID                      string        `json:"bubbleId"`
	ComposerID                    string        `json:"composerId"`
	ContextID                     string        `json:"contextId"`
	GitStatusRaw                  string        `json:"gitStatusRaw,omitempty"`
	TerminalFiles                 []string      `json:"terminalFiles,omitempty"`
	AttachedFoldersListDirResults []interface{} `json:"attachedFoldersListDirResults,omitempty"`
	CursorRules                   []interface{} `json:"cursorRules,omitempty"`
	ProjectLayouts                []string      `json:"projectLayouts,omitempty"`
}

// ParseRawBubble parses a bubbleId record. Conversation and bubble ids come
// from the key, never from the payload.
func ParseRawBubble(key, value string) (*RawBubble, error) {
	rk, err := ParseRecordKey(key)
	if err != nil {
		return nil, &ParseError{Source: string(FamilyBubble), Key: key, Err: err}
	}
	if rk.Family != FamilyBubble {
		return nil, &ParseError{Source: string(FamilyBubble), Key: key, Err: fmt.Errorf("key family is %s", rk.Family)}
	}

	var bubble RawBubble
	if err := json.Unmarshal([]byte(value), &bubble); err != nil {
		return nil, &ParseError{Source: string(FamilyBubble), Key: key, Err: err}
	}

	bubble.ChatID = rk.ConversationID
	bubble.BubbleID = rk.SubID
	bubble.Raw = value

	return &bubble, nil
}

// ParseRawComposer parses a composerData record
func ParseRawComposer(key, value string) (*RawComposer, error) {
	rk, err := ParseRecordKey(key)
	if err != nil {
		return nil, &ParseError{Source: string(FamilyComposer), Key: key, Err: err}
	}
	if rk.Family != FamilyComposer {
		return nil, &ParseError{Source: string(FamilyComposer), Key: key, Err: fmt.Errorf("key family is %s", rk.Family)}
	}

	var composer RawComposer
	if err := json.Unmarshal([]byte(value), &composer); err != nil {
		return nil, &ParseError{Source: string(FamilyComposer), Key: key, Err: err}
	}

	composer.ComposerID = rk.ConversationID
	composer.Raw = value

	return &composer, nil
}

// ParseMessageContext parses a messageRequestContext record
func ParseMessageContext(key, value string) (*MessageContext, error) {
	rk, err := ParseRecordKey(key)
	if err != nil {
		return nil, &ParseError{Source: string(FamilyRequestContext), Key: key, Err: err}
	}
	if rk.Family != FamilyRequestContext {
		return nil, &ParseError{Source: string(FamilyRequestContext), Key: key, Err: fmt.Errorf("key family is %s", rk.Family)}
	}

	var context MessageContext
	if err := json.Unmarshal([]byte(value), &context); err != nil {
		return nil, &ParseError{Source: string(FamilyRequestContext), Key: key, Err: err}
	}

	context.ComposerID = rk.ConversationID
	context.ContextID = rk.SubID

	return &context, nil
}

// RootPaths decodes the projectLayouts entries. Each entry is itself a JSON
// string carrying a rootPath field (a second decode); entries without a
// usable rootPath are counted as skipped, never fatal.
func (mc *MessageContext) RootPaths() (paths []string, skipped int) {
	for _, entry := range mc.ProjectLayouts {
		root := gjson.Get(entry, "rootPath")
		if root.Type != gjson.String || root.String() == "" {
			skipped++
			continue
		}
		paths = append(paths, root.String())
	}
	return paths, skipped
}

// GetTimestamp returns a time.Time from the bubble's ms-epoch timestamp
func (rb *RawBubble) GetTimestamp() time.Time {
	return time.Unix(0, rb.Timestamp*int64(time.Millisecond))
}

// GetCreatedAt returns a time.Time from the creation timestamp
func (rc *RawComposer) GetCreatedAt() time.Time {
	if rc.CreatedAt == 0 {
		return time.Time{}
	}
	return time.Unix(0, rc.CreatedAt*int64(time.Millisecond))
}

// GetLastUpdatedAt returns a time.Time from the last-update timestamp
func (rc *RawComposer) GetLastUpdatedAt() time.Time {
	if rc.LastUpdatedAt == 0 {
		return rc.GetCreatedAt()
	}
	return time.Unix(0, rc.LastUpdatedAt*int64(time.Millisecond))
}
