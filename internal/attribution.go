package internal

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ConversationSignals bundles everything the attribution engine may inspect
// for one conversation: the raw composer payload, the layouts-declared root
// paths, and the conversation's bubble payloads in header order.
type ConversationSignals struct {
	ConversationID string
	ComposerRaw    string
	RootPaths      []string
	BubblePayloads []string
}

// matcher is one strategy of the attribution cascade.
type matcher struct {
	name  string
	match func(sig *ConversationSignals) (string, bool)
}

// Engine attributes conversations to allowed project names. Strategies run
// in a fixed order, first match wins; substring matching is case sensitive
// throughout. Project layouts are the IDE's own declared roots and take
// precedence; file-path strategies are fallbacks for conversations that
// predate or lack that declaration.
type Engine struct {
	allowed  []string
	matchers []matcher

	// SkippedBubblePayloads counts bubble payloads that were not valid JSON,
	// aggregated across one pass. Composer and layout skips are counted by
	// the loaders that decode them.
	SkippedBubblePayloads int
}

// NewEngine builds an engine for one ordered allow-list. Callers starting
// from a name→workspace map must sort the names first so first-match-wins
// stays deterministic (see ProjectCatalog.Names).
func NewEngine(allowed []string) *Engine {
	e := &Engine{allowed: allowed}
	e.matchers = []matcher{
		{name: "projectLayouts", match: e.matchProjectLayouts},
		{name: "newlyCreatedFiles", match: e.matchNewlyCreatedFiles},
		{name: "codeBlockData", match: e.matchCodeBlockData},
		{name: "bubbleFiles", match: e.matchBubbleFiles},
	}
	return e
}

// Attribute runs the cascade over one conversation's signals. It returns
// the matched project name and the strategy that matched it, or ok=false
// when the conversation stays unattributed. Callers decide the policy for
// unattributed conversations.
func (e *Engine) Attribute(sig *ConversationSignals) (project, strategy string, ok bool) {
	if len(e.allowed) == 0 {
		return "", "", false
	}
	for _, m := range e.matchers {
		if name, matched := m.match(sig); matched {
			return name, m.name, true
		}
	}
	return "", "", false
}

// matchProjectLayouts tests each declared root path against the allow-list.
func (e *Engine) matchProjectLayouts(sig *ConversationSignals) (string, bool) {
	for _, root := range sig.RootPaths {
		for _, name := range e.allowed {
			if name != "" && strings.Contains(root, name) {
				return name, true
			}
		}
	}
	return "", false
}

// matchNewlyCreatedFiles tests the paths of files the conversation created.
// Entries carry a path field in current payloads; older ones are bare
// strings.
func (e *Engine) matchNewlyCreatedFiles(sig *ConversationSignals) (string, bool) {
	var match string
	gjson.Get(sig.ComposerRaw, "newlyCreatedFiles").ForEach(func(_, entry gjson.Result) bool {
		path := entry.Get("path").String()
		if path == "" && entry.Type == gjson.String {
			path = entry.String()
		}
		if name, ok := matchNormalizedPath(path, e.allowed); ok {
			match = name
			return false
		}
		return true
	})
	return match, match != ""
}

// matchCodeBlockData tests the file paths the IDE keyed code blocks under.
func (e *Engine) matchCodeBlockData(sig *ConversationSignals) (string, bool) {
	var match string
	gjson.Get(sig.ComposerRaw, "codeBlockData").ForEach(func(key, _ gjson.Result) bool {
		if name, ok := matchNormalizedPath(key.String(), e.allowed); ok {
			match = name
			return false
		}
		return true
	})
	return match, match != ""
}

// matchBubbleFiles walks the bubbles in header order and tests their file
// references: relevantFiles, then attached code chunk paths, then explicit
// file selections. First hit across any field wins.
func (e *Engine) matchBubbleFiles(sig *ConversationSignals) (string, bool) {
	for _, payload := range sig.BubblePayloads {
		if payload == "" {
			continue
		}
		if !gjson.Valid(payload) {
			e.SkippedBubblePayloads++
			continue
		}
		if name, ok := e.matchOneBubble(payload); ok {
			return name, true
		}
	}
	return "", false
}

func (e *Engine) matchOneBubble(payload string) (string, bool) {
	for _, file := range gjson.Get(payload, "relevantFiles").Array() {
		if name, ok := matchNormalizedPath(file.String(), e.allowed); ok {
			return name, true
		}
	}
	for _, path := range gjson.Get(payload, "attachedFileCodeChunksUris.#.path").Array() {
		if name, ok := matchNormalizedPath(path.String(), e.allowed); ok {
			return name, true
		}
	}
	for _, path := range gjson.Get(payload, "context.fileSelections.#.uri.path").Array() {
		if name, ok := matchNormalizedPath(path.String(), e.allowed); ok {
			return name, true
		}
	}
	return "", false
}

var homePrefixRe = regexp.MustCompile(`^/Users/[^/]+/`)

// NormalizeStoredPath rewrites a stored file path into the form attribution
// matches against: leading /Users/<user>/ stripped, the WSL /mnt/c/ mount
// rewritten to a drive prefix, separators normalized to backslash.
func NormalizeStoredPath(path string) string {
	path = homePrefixRe.ReplaceAllString(path, "")
	if strings.HasPrefix(path, "/mnt/c/") {
		path = "C:\\" + path[len("/mnt/c/"):]
	}
	return strings.ReplaceAll(path, "/", "\\")
}

func matchNormalizedPath(path string, allowed []string) (string, bool) {
	if path == "" {
		return "", false
	}
	normalized := NormalizeStoredPath(path)
	for _, name := range allowed {
		if name != "" && strings.Contains(normalized, name) {
			return name, true
		}
	}
	return "", false
}

// BuildSignals assembles engine input from a parsed composer, the layouts
// map, and the bubble index. Bubble payloads follow the composer's header
// order; headers without a stored bubble contribute nothing.
func BuildSignals(composer *RawComposer, layouts LayoutsMap, bubbles *BubbleIndex) *ConversationSignals {
	sig := &ConversationSignals{
		ConversationID: composer.ComposerID,
		ComposerRaw:    composer.Raw,
		RootPaths:      layouts[composer.ComposerID],
	}
	if bubbles != nil {
		for _, header := range composer.FullConversationHeadersOnly {
			if payload, ok := bubbles.Payloads[header.BubbleID]; ok {
				sig.BubblePayloads = append(sig.BubblePayloads, payload)
			}
		}
	}
	return sig
}

// SignalsFromBubbles is BuildSignals for callers that already hold decoded
// bubbles (the list/search path).
func SignalsFromBubbles(composer *RawComposer, layouts LayoutsMap, bubbles map[string]*RawBubble) *ConversationSignals {
	sig := &ConversationSignals{
		ConversationID: composer.ComposerID,
		ComposerRaw:    composer.Raw,
		RootPaths:      layouts[composer.ComposerID],
	}
	for _, header := range composer.FullConversationHeadersOnly {
		if bubble, ok := bubbles[header.BubbleID]; ok && bubble.Raw != "" {
			sig.BubblePayloads = append(sig.BubblePayloads, bubble.Raw)
		}
	}
	return sig
}
