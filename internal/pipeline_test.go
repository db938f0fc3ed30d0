package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cursorvault/cursor-vault/testutil"
)

// newTestSessionSource builds a Cursor dir with two named workspaces and a
// store holding two conversations: one attributable through declared layout
// roots, one only through bubble file references.
func newTestSessionSource(t *testing.T) *SessionSource {
	t.Helper()

	base := testutil.CreateTempDir(t)
	testutil.CreateWorkspaceFixture(t, base, "hash-alpha", "file:///home/dev/Alpha")
	testutil.CreateWorkspaceFixture(t, base, "hash-beta", "file:///home/dev/Beta")

	dbPath := filepath.Join(base, "globalStorage", "state.vscdb")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		t.Fatalf("Failed to create globalStorage: %v", err)
	}

	db := testutil.CreateStoreDB(t, dbPath)
	testutil.InsertComposer(t, db, "composer1",
		`{"name":"Alpha planning","createdAt":1000,"lastUpdatedAt":5000,"fullConversationHeadersOnly":[{"bubbleId":"bubble1","type":1},{"bubbleId":"bubble2","type":2}]}`)
	testutil.InsertBubble(t, db, "composer1", "bubble1",
		`{"text":"Hello from alpha","timestamp":1000,"type":1}`)
	testutil.InsertBubble(t, db, "composer1", "bubble2",
		`{"text":"Replying here","timestamp":2000,"type":2}`)
	testutil.InsertContext(t, db, "composer1", "ctx1",
		`{"bubbleId":"bubble1","projectLayouts":["{\"rootPath\":\"/home/dev/Alpha\"}"]}`)
	testutil.InsertComposer(t, db, "composer2",
		`{"name":"Beta question","createdAt":3000,"lastUpdatedAt":9000,"fullConversationHeadersOnly":[{"bubbleId":"bubble3","type":1}]}`)
	testutil.InsertBubble(t, db, "composer2", "bubble3",
		`{"text":"How do I deploy this?","timestamp":3000,"type":1,"relevantFiles":["/home/dev/Beta/main.go"]}`)
	if err := db.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	manager, _, _ := newShadowManager(t, base)

	workspaces, err := DetectWorkspaces(base)
	if err != nil {
		t.Fatalf("DetectWorkspaces() error = %v", err)
	}

	return NewSessionSource(manager, BuildProjectCatalog(workspaces))
}

func TestSessionSource_Sessions(t *testing.T) {
	source := newTestSessionSource(t)

	sessions, err := source.Sessions()
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}

	if len(sessions) != 2 {
		t.Fatalf("Sessions() returned %d sessions, want 2", len(sessions))
	}

	// Most recently updated first
	if sessions[0].ID != "composer2" {
		t.Errorf("Sessions()[0].ID = %q, want composer2 (newest first)", sessions[0].ID)
	}
	if sessions[1].ID != "composer1" {
		t.Errorf("Sessions()[1].ID = %q, want composer1", sessions[1].ID)
	}

	if len(sessions[1].Messages) != 2 {
		t.Errorf("composer1 has %d messages, want 2", len(sessions[1].Messages))
	}
	if sessions[1].Messages[0].Actor != "user" || sessions[1].Messages[0].Content != "Hello from alpha" {
		t.Errorf("composer1 first message = %s/%q, want user/Hello from alpha",
			sessions[1].Messages[0].Actor, sessions[1].Messages[0].Content)
	}
}

func TestSessionSource_Sessions_Attribution(t *testing.T) {
	source := newTestSessionSource(t)

	sessions, err := source.Sessions()
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}

	byID := make(map[string]*Session)
	for _, s := range sessions {
		byID[s.ID] = s
	}

	alpha := byID["composer1"]
	if alpha == nil {
		t.Fatal("composer1 missing from Sessions()")
	}
	if alpha.Project != "Alpha" {
		t.Errorf("composer1 Project = %q, want Alpha", alpha.Project)
	}
	if alpha.Metadata.AttributedBy != "projectLayouts" {
		t.Errorf("composer1 AttributedBy = %q, want projectLayouts", alpha.Metadata.AttributedBy)
	}

	beta := byID["composer2"]
	if beta == nil {
		t.Fatal("composer2 missing from Sessions()")
	}
	if beta.Project != "Beta" {
		t.Errorf("composer2 Project = %q, want Beta", beta.Project)
	}
	if beta.Metadata.AttributedBy != "bubbleFiles" {
		t.Errorf("composer2 AttributedBy = %q, want bubbleFiles", beta.Metadata.AttributedBy)
	}
}

func TestSessionSource_Session(t *testing.T) {
	source := newTestSessionSource(t)

	session, err := source.Session("composer1")
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}

	if session.ID != "composer1" {
		t.Errorf("Session() ID = %q, want composer1", session.ID)
	}
	if session.Project != "Alpha" {
		t.Errorf("Session() Project = %q, want Alpha", session.Project)
	}
	if len(session.Messages) != 2 {
		t.Errorf("Session() returned %d messages, want 2", len(session.Messages))
	}
	if session.Metadata.Name != "Alpha planning" {
		t.Errorf("Session() Name = %q, want Alpha planning", session.Metadata.Name)
	}
}

func TestSessionSource_Session_NotFound(t *testing.T) {
	source := newTestSessionSource(t)

	_, err := source.Session("no-such-composer")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Session() error = %v, want ErrSessionNotFound", err)
	}
}

func TestFilterSessionsByProject(t *testing.T) {
	sessions := []*Session{
		CreateTestSession("s1"),
		CreateTestSession("s2"),
		CreateTestSession("s3"),
	}
	sessions[0].Project = "Alpha"
	sessions[1].Project = "Beta"
	sessions[2].Project = "Alpha"

	tests := []struct {
		name    string
		project string
		want    int
	}{
		{name: "empty keeps all", project: "", want: 3},
		{name: "alpha", project: "Alpha", want: 2},
		{name: "beta", project: "Beta", want: 1},
		{name: "unknown", project: "Gamma", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSessionsByProject(sessions, tt.project)
			if len(got) != tt.want {
				t.Errorf("FilterSessionsByProject(%q) = %d sessions, want %d", tt.project, len(got), tt.want)
			}
			for _, s := range got {
				if tt.project != "" && s.Project != tt.project {
					t.Errorf("FilterSessionsByProject(%q) kept session with Project %q", tt.project, s.Project)
				}
			}
		})
	}
}
