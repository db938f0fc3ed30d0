package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

// ErrSessionNotFound reports a conversation id with no composer record in
// the active store
var ErrSessionNotFound = errors.New("session not found")

// SessionSource loads normalized sessions out of the active store. Every
// read path, CLI and HTTP alike, goes through here so attribution and
// privacy filtering behave the same everywhere.
type SessionSource struct {
	manager *ShadowManager
	catalog ProjectCatalog
}

// NewSessionSource creates a SessionSource over the given shadow manager
// and workspace catalog
func NewSessionSource(manager *ShadowManager, catalog ProjectCatalog) *SessionSource {
	return &SessionSource{manager: manager, catalog: catalog}
}

func (s *SessionSource) open() (*sql.DB, error) {
	return OpenDatabase(s.manager.ActivePath())
}

// Sessions loads, reconstructs, attributes and normalizes every conversation
// in the active store, most recently updated first
func (s *SessionSource) Sessions() ([]*Session, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	storage := NewStorage(db)

	bubbles, err := storage.LoadBubbles()
	if err != nil {
		return nil, err
	}
	composers, skipped, err := storage.LoadComposers()
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		LogDebug("skipped %d unparseable composer record(s)", skipped)
	}
	contexts, err := storage.LoadMessageContexts()
	if err != nil {
		return nil, err
	}
	layouts, layoutSkips, err := storage.LoadProjectLayouts()
	if err != nil {
		return nil, err
	}
	if layoutSkips > 0 {
		LogDebug("skipped %d unparseable layout entries", layoutSkips)
	}

	reconstructor := NewReconstructor(bubbles, contexts)
	conversations, err := reconstructor.ReconstructAllConversations(composers)
	if err != nil {
		return nil, err
	}

	composerByID := make(map[string]*RawComposer, len(composers))
	for _, composer := range composers {
		composerByID[composer.ComposerID] = composer
	}

	engine := NewEngine(s.catalog.Names())
	normalizer := NewNormalizer()

	sessions := make([]*Session, 0, len(conversations))
	for _, conv := range conversations {
		var project, strategy string
		if composer := composerByID[conv.ComposerID]; composer != nil {
			project, strategy, _ = engine.Attribute(SignalsFromBubbles(composer, layouts, bubbles))
		}

		session, err := normalizer.NormalizeConversation(conv, project, strategy)
		if err != nil {
			LogWarn("Failed to normalize conversation %s: %v", conv.ComposerID, err)
			continue
		}
		sessions = append(sessions, session)
	}

	sessions = NewDeduplicator().Deduplicate(sessions)

	// RFC3339 strings from one run share an offset, so lexical order is
	// chronological; sessions without a timestamp sort last
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Metadata.UpdatedAt > sessions[j].Metadata.UpdatedAt
	})

	return sessions, nil
}

// FilterSessionsByProject keeps sessions attributed to the named project.
// An empty name keeps everything.
func FilterSessionsByProject(sessions []*Session, project string) []*Session {
	if project == "" {
		return sessions
	}
	filtered := make([]*Session, 0, len(sessions))
	for _, session := range sessions {
		if session.Project == project {
			filtered = append(filtered, session)
		}
	}
	return filtered
}

// Session loads a single conversation by composer id
func (s *SessionSource) Session(id string) (*Session, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	storage := NewStorage(db)

	composer, err := storage.LoadComposer(id)
	if err != nil {
		return nil, err
	}
	if composer == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	bubbles, err := storage.LoadConversationBubbles(id)
	if err != nil {
		return nil, err
	}
	contexts, err := storage.LoadConversationContexts(id)
	if err != nil {
		return nil, err
	}

	layouts := make(LayoutsMap)
	for _, ctx := range contexts {
		paths, _ := ctx.RootPaths()
		if len(paths) > 0 {
			layouts[id] = append(layouts[id], paths...)
		}
	}

	reconstructor := NewReconstructor(bubbles, map[string][]*MessageContext{id: contexts})
	conv, err := reconstructor.ReconstructConversation(composer)
	if err != nil {
		return nil, &ReconstructionError{ComposerID: id, Err: err}
	}

	engine := NewEngine(s.catalog.Names())
	project, strategy, _ := engine.Attribute(SignalsFromBubbles(composer, layouts, bubbles))

	return NewNormalizer().NormalizeConversation(conv, project, strategy)
}
