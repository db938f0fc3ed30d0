package testutil

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// CreateSQLiteFixture creates a store fixture at dbPath with sample data
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db := CreateStoreDB(t, dbPath)

	conversationID := uuid.NewString()
	bubbleID := uuid.NewString()

	composerData := map[string]interface{}{
		"composerId":    conversationID,
		"name":          "Test Conversation",
		"createdAt":     time.Now().UnixMilli(),
		"lastUpdatedAt": time.Now().UnixMilli(),
		"fullConversationHeadersOnly": []map[string]interface{}{
			{"bubbleId": bubbleID, "type": 1},
		},
	}
	composerJSON, _ := json.Marshal(composerData)

	bubbleData := map[string]interface{}{
		"text":      "Hello world",
		"timestamp": time.Now().UnixMilli(),
		"type":      1,
	}
	bubbleJSON, _ := json.Marshal(bubbleData)

	InsertComposer(t, db, conversationID, string(composerJSON))
	InsertBubble(t, db, conversationID, bubbleID, string(bubbleJSON))

	if err := db.Close(); err != nil {
		t.Fatalf("Failed to close fixture database: %v", err)
	}
}

// CreateAllowListFixture writes an allow-list file with the given names
func CreateAllowListFixture(t *testing.T, path string, names []string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create allow-list directory: %v", err)
	}
	payload := map[string]interface{}{"allowedProjects": names}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal allow-list: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write allow-list file: %v", err)
	}
}

// CreateWorkspaceFixture creates one workspaceStorage entry whose
// workspace.json points at folder, and returns the entry directory.
func CreateWorkspaceFixture(t *testing.T, basePath, workspaceHash, folder string) string {
	t.Helper()
	workspaceDir := filepath.Join(basePath, "workspaceStorage", workspaceHash)
	if err := os.MkdirAll(workspaceDir, 0755); err != nil {
		t.Fatalf("Failed to create workspace directory: %v", err)
	}

	// Create workspace.json
	workspaceJSON := map[string]interface{}{
		"folder": folder,
	}
	jsonData, _ := json.Marshal(workspaceJSON)
	workspaceJSONPath := filepath.Join(workspaceDir, "workspace.json")
	if err := os.WriteFile(workspaceJSONPath, jsonData, 0644); err != nil {
		t.Fatalf("Failed to write workspace.json: %v", err)
	}

	return workspaceDir
}

// CreateMockCursorDir builds a Cursor User directory layout: a globalStorage
// store with sample records plus two named workspaces. It returns the base
// path that DetectStoragePaths would resolve from an override.
func CreateMockCursorDir(t *testing.T) string {
	t.Helper()
	tmpDir := CreateTempDir(t)

	CreateWorkspaceFixture(t, tmpDir, "hash-alpha", "file:///home/dev/Alpha")
	CreateWorkspaceFixture(t, tmpDir, "hash-beta", "file:///home/dev/Beta")

	dbPath := filepath.Join(tmpDir, "globalStorage", "state.vscdb")
	CreateSQLiteFixture(t, dbPath)

	return tmpDir
}

// OpenStore opens a store fixture read-write for direct inspection
func OpenStore(t *testing.T, dbPath string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open store %s: %v", dbPath, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
