package internal

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const (
	shadowFileName   = "state.vscdb.shadow"
	filteredFileName = "filtered.vscdb"
)

// ShadowManager owns the process-lifetime cache of the active store path.
// Consumers never read the IDE's own store directly: they get either a
// plain shadow copy or a privacy-filtered copy derived from it. All state
// lives on the struct and every entry point holds the mutex, so two
// derivations can never race on the same temp files.
type ShadowManager struct {
	mu sync.Mutex

	paths      StoragePaths
	tempDir    string
	configPath string
	events     *EventLog

	activePath string
}

// NewShadowManager wires a manager for one storage layout. configPath names
// the allow-list JSON file; tempDir receives the shadow and filtered copies.
func NewShadowManager(paths StoragePaths, tempDir, configPath string, events *EventLog) *ShadowManager {
	return &ShadowManager{
		paths:      paths,
		tempDir:    tempDir,
		configPath: configPath,
		events:     events,
	}
}

// ActivePath returns the store path consumers should open. It never fails:
// when the source store is missing, the would-be source path is returned and
// the caller discovers the absence itself; when filtering fails, the
// unfiltered shadow is served instead of no store at all. Once derived, the
// path stays cached until Invalidate or until the file disappears.
func (m *ShadowManager) ActivePath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activePathLocked()
}

// Invalidate drops the cached path and eagerly re-derives, so the refresh
// caller pays the derivation cost instead of the next reader.
func (m *ShadowManager) Invalidate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activePath = ""
	return m.activePathLocked()
}

func (m *ShadowManager) activePathLocked() string {
	if m.activePath != "" {
		if _, err := os.Stat(m.activePath); err == nil {
			return m.activePath
		}
		m.activePath = ""
	}

	derivation := uuid.NewString()

	source := m.paths.GetGlobalStorageDBPath()
	if _, err := os.Stat(source); err != nil {
		LogDebug("source store missing at %s", source)
		m.events.Event("[%s] source store missing at %s", derivation, source)
		return source
	}

	shadow := filepath.Join(m.tempDir, shadowFileName)
	if err := CopyFile(source, shadow); err != nil {
		LogError("shadow copy failed: %v", err)
		m.events.Event("[%s] shadow copy failed: %v", derivation, err)
		return source
	}
	m.events.Event("[%s] shadow copy at %s", derivation, shadow)

	allowed := LoadAllowedProjects(m.configPath)
	if len(allowed) == 0 {
		m.activePath = shadow
		m.events.Event("[%s] no allow-list configured; serving unfiltered shadow", derivation)
		return m.activePath
	}

	filtered := filepath.Join(m.tempDir, filteredFileName)
	report, err := FilterStore(shadow, filtered, allowed, m.events)
	if err != nil {
		// The unfiltered shadow is served rather than no store at all.
		LogError("filtering failed, serving unfiltered shadow: %v", err)
		m.events.Event("[%s] filtering failed: %v", derivation, err)
		m.activePath = shadow
		return m.activePath
	}

	if err := os.Remove(shadow); err != nil {
		LogWarn("could not remove shadow copy %s: %v", shadow, err)
	}
	m.activePath = filtered
	m.events.Event("[%s] filtered store at %s, %d conversation(s) kept",
		derivation, filtered, report.AllowedConversations)
	return m.activePath
}
