package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Storage provides methods to extract raw data from cursorDiskKV
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance
func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// LoadBubbles loads all bubbles, keyed by bubble id
func (s *Storage) LoadBubbles() (map[string]*RawBubble, error) {
	pairs, err := QueryFamily(s.db, FamilyBubble)
	if err != nil {
		return nil, fmt.Errorf("failed to query bubbles: %w", err)
	}

	bubbleMap, skipped := parseBubblePairs(pairs)
	if skipped > 0 {
		LogDebug("skipped %d unparseable bubble record(s)", skipped)
	}

	return bubbleMap, nil
}

// LoadConversationBubbles loads one conversation's bubbles, keyed by bubble id
func (s *Storage) LoadConversationBubbles(conversationID string) (map[string]*RawBubble, error) {
	pairs, err := QueryConversationFamily(s.db, FamilyBubble, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bubbles for %s: %w", conversationID, err)
	}

	bubbleMap, skipped := parseBubblePairs(pairs)
	if skipped > 0 {
		LogDebug("skipped %d unparseable bubble record(s) in %s", skipped, conversationID)
	}

	return bubbleMap, nil
}

func parseBubblePairs(pairs []KeyValuePair) (map[string]*RawBubble, int) {
	bubbleMap := make(map[string]*RawBubble)
	skipped := 0
	for _, pair := range pairs {
		bubble, err := ParseRawBubble(pair.Key, pair.Value)
		if err != nil {
			skipped++
			continue
		}
		bubbleMap[bubble.BubbleID] = bubble
	}
	return bubbleMap, skipped
}

// LoadComposers loads all conversation metadata records. The second return
// is the number of records skipped as unparseable.
func (s *Storage) LoadComposers() ([]*RawComposer, int, error) {
	pairs, err := QueryFamily(s.db, FamilyComposer)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query composers: %w", err)
	}

	composers := make([]*RawComposer, 0, len(pairs))
	skipped := 0
	for _, pair := range pairs {
		composer, err := ParseRawComposer(pair.Key, pair.Value)
		if err != nil {
			skipped++
			continue
		}
		composers = append(composers, composer)
	}

	return composers, skipped, nil
}

// LoadComposer loads a single conversation metadata record. A missing or
// NULL record returns nil without error.
func (s *Storage) LoadComposer(conversationID string) (*RawComposer, error) {
	key := FamilyComposer.Prefix() + conversationID
	value, err := GetRecord(s.db, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query composer %s: %w", conversationID, err)
	}

	return ParseRawComposer(key, value)
}

// LoadConversationContexts loads one conversation's request snapshots
func (s *Storage) LoadConversationContexts(conversationID string) ([]*MessageContext, error) {
	pairs, err := QueryConversationFamily(s.db, FamilyRequestContext, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contexts for %s: %w", conversationID, err)
	}

	var contexts []*MessageContext
	skipped := 0
	for _, pair := range pairs {
		context, err := ParseMessageContext(pair.Key, pair.Value)
		if err != nil {
			skipped++
			continue
		}
		contexts = append(contexts, context)
	}
	if skipped > 0 {
		LogDebug("skipped %d unparseable context record(s) in %s", skipped, conversationID)
	}

	return contexts, nil
}

// LoadMessageContexts loads all request snapshots, grouped by conversation
func (s *Storage) LoadMessageContexts() (map[string][]*MessageContext, error) {
	pairs, err := QueryFamily(s.db, FamilyRequestContext)
	if err != nil {
		return nil, fmt.Errorf("failed to query message contexts: %w", err)
	}

	contextMap := make(map[string][]*MessageContext)
	skipped := 0
	for _, pair := range pairs {
		context, err := ParseMessageContext(pair.Key, pair.Value)
		if err != nil {
			skipped++
			continue
		}
		contextMap[context.ComposerID] = append(contextMap[context.ComposerID], context)
	}
	if skipped > 0 {
		LogDebug("skipped %d unparseable context record(s)", skipped)
	}

	return contextMap, nil
}

// LoadCodeBlockDiffs loads all tool-action diff records, grouped by
// conversation
func (s *Storage) LoadCodeBlockDiffs() (map[string][]interface{}, error) {
	pairs, err := QueryFamily(s.db, FamilyCodeBlockDiff)
	if err != nil {
		return nil, fmt.Errorf("failed to query code block diffs: %w", err)
	}

	diffMap := make(map[string][]interface{})
	for _, pair := range pairs {
		rk, err := ParseRecordKey(pair.Key)
		if err != nil {
			continue
		}

		var diff interface{}
		if err := json.Unmarshal([]byte(pair.Value), &diff); err != nil {
			continue
		}

		diffMap[rk.ConversationID] = append(diffMap[rk.ConversationID], diff)
	}

	return diffMap, nil
}

// LayoutsMap is conversation id → ordered project root paths, the engine's
// preferred attribution signal.
type LayoutsMap map[string][]string

// LoadProjectLayouts builds the layouts map from every request context
// record. The second return counts entries skipped as unparseable (bad
// record JSON or projectLayouts entries without a usable rootPath).
func (s *Storage) LoadProjectLayouts() (LayoutsMap, int, error) {
	pairs, err := QueryFamily(s.db, FamilyRequestContext)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query request contexts: %w", err)
	}

	layouts := make(LayoutsMap)
	skipped := 0
	for _, pair := range pairs {
		context, err := ParseMessageContext(pair.Key, pair.Value)
		if err != nil {
			skipped++
			continue
		}
		paths, n := context.RootPaths()
		skipped += n
		if len(paths) > 0 {
			layouts[context.ComposerID] = append(layouts[context.ComposerID], paths...)
		}
	}

	return layouts, skipped, nil
}

// KeysByConversation groups every key of one family by its conversation id,
// without decoding payloads. Used by the filter's delete pass. The second
// return counts keys skipped as unparseable.
func (s *Storage) KeysByConversation(family RecordFamily) (map[string][]string, int, error) {
	keys, err := QueryFamilyKeys(s.db, family)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query %s keys: %w", family, err)
	}

	grouped := make(map[string][]string)
	skipped := 0
	for _, key := range keys {
		rk, err := ParseRecordKey(key)
		if err != nil {
			skipped++
			continue
		}
		grouped[rk.ConversationID] = append(grouped[rk.ConversationID], key)
	}

	return grouped, skipped, nil
}

// BubbleIndex holds the filter's view of the bubble family: raw payloads
// for signal extraction and store keys for deletion. Ids come from key
// segments, never from payloads.
type BubbleIndex struct {
	Payloads map[string]string   // bubble id → raw payload
	Keys     map[string][]string // conversation id → store keys
}

// LoadBubbleIndex builds the bubble index. The second return counts keys
// skipped as unparseable.
func (s *Storage) LoadBubbleIndex() (*BubbleIndex, int, error) {
	keys, skipped, err := s.KeysByConversation(FamilyBubble)
	if err != nil {
		return nil, 0, err
	}

	pairs, err := QueryFamily(s.db, FamilyBubble)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bubbles: %w", err)
	}

	payloads := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		rk, err := ParseRecordKey(pair.Key)
		if err != nil {
			continue
		}
		payloads[rk.SubID] = pair.Value
	}

	return &BubbleIndex{Payloads: payloads, Keys: keys}, skipped, nil
}
