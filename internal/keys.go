package internal

import (
	"fmt"
	"strings"
)

// RecordFamily identifies one of the record families stored in cursorDiskKV.
type RecordFamily string

const (
	FamilyComposer       RecordFamily = "composerData"
	FamilyBubble         RecordFamily = "bubbleId"
	FamilyRequestContext RecordFamily = "messageRequestContext"
	FamilyCodeBlockDiff  RecordFamily = "codeBlockDiff"
)

// ConversationFamilies are the families the privacy filter operates on.
// codeBlockDiff records also reference a conversation but are never filtered.
var ConversationFamilies = []RecordFamily{
	FamilyComposer,
	FamilyBubble,
	FamilyRequestContext,
}

// RecordKey is the decoded form of a cursorDiskKV key. Keys are colon
// delimited: family:conversationId for composer records, and
// family:conversationId:subId for bubble, context and diff records.
type RecordKey struct {
	Family         RecordFamily
	ConversationID string
	SubID          string
}

// ParseRecordKey decodes a raw key into its typed form. Every consumer of
// key segments goes through this single parser; the matching encoder is
// RecordKey.String.
func ParseRecordKey(raw string) (RecordKey, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 || parts[1] == "" {
		return RecordKey{}, fmt.Errorf("malformed record key: %q", raw)
	}

	family := RecordFamily(parts[0])
	switch family {
	case FamilyComposer:
		if len(parts) != 2 {
			return RecordKey{}, fmt.Errorf("composer key has extra segments: %q", raw)
		}
		return RecordKey{Family: family, ConversationID: parts[1]}, nil
	case FamilyBubble, FamilyRequestContext, FamilyCodeBlockDiff:
		if len(parts) != 3 || parts[2] == "" {
			return RecordKey{}, fmt.Errorf("%s key missing secondary id: %q", family, raw)
		}
		return RecordKey{Family: family, ConversationID: parts[1], SubID: parts[2]}, nil
	default:
		return RecordKey{}, fmt.Errorf("unknown record family in key: %q", raw)
	}
}

// String re-encodes the key in its stored form.
func (k RecordKey) String() string {
	if k.SubID == "" {
		return string(k.Family) + ":" + k.ConversationID
	}
	return string(k.Family) + ":" + k.ConversationID + ":" + k.SubID
}

// Prefix returns the family tag with its trailing delimiter.
func (f RecordFamily) Prefix() string {
	return string(f) + ":"
}

// KeyRange returns half-open [lo, hi) bounds covering every key of the
// family. ';' is the byte after ':', so the range is exact and lets the
// store walk its primary-key index instead of scanning the whole table.
func (f RecordFamily) KeyRange() (lo, hi string) {
	return string(f) + ":", string(f) + ";"
}
