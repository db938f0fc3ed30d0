package internal

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cursorvault/cursor-vault/testutil"
)

// seedFilterStore builds an on-disk store with one conversation attributable
// to Alpha, one with no signals at all, and diff records for both.
func seedFilterStore(t *testing.T, dbPath string) {
	t.Helper()
	db := testutil.CreateStoreDB(t, dbPath)

	testutil.InsertComposer(t, db, "conv-keep",
		`{"name":"Alpha work","fullConversationHeadersOnly":[{"bubbleId":"bub-1","type":1},{"bubbleId":"bub-2","type":2}]}`)
	testutil.InsertBubble(t, db, "conv-keep", "bub-1", `{"text":"question","type":1}`)
	testutil.InsertBubble(t, db, "conv-keep", "bub-2", `{"text":"answer","type":2}`)
	testutil.InsertContext(t, db, "conv-keep", "ctx-1",
		`{"bubbleId":"bub-1","projectLayouts":["{\"rootPath\":\"/home/dev/Alpha\"}"]}`)
	testutil.InsertCodeBlockDiff(t, db, "conv-keep", "diff-1", `{"original":"a","modified":"b"}`)

	testutil.InsertComposer(t, db, "conv-drop",
		`{"name":"untracked","fullConversationHeadersOnly":[{"bubbleId":"bub-3","type":1}]}`)
	testutil.InsertBubble(t, db, "conv-drop", "bub-3", `{"text":"elsewhere","type":1}`)
	testutil.InsertContext(t, db, "conv-drop", "ctx-2", `{"bubbleId":"bub-3"}`)
	testutil.InsertCodeBlockDiff(t, db, "conv-drop", "diff-2", `{"original":"c","modified":"d"}`)

	if err := db.Close(); err != nil {
		t.Fatalf("close seed store: %v", err)
	}
}

func TestFilterStoreEmptyAllowList(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	src := filepath.Join(tmpDir, "state.vscdb")
	dst := filepath.Join(tmpDir, "filtered.vscdb")
	seedFilterStore(t, src)

	report, err := FilterStore(src, dst, nil, nil)
	if err != nil {
		t.Fatalf("FilterStore() returned error: %v", err)
	}

	if report.Filtered {
		t.Error("Filtered = true, want false for an empty allow-list")
	}
	if report.TotalBefore != report.TotalAfter {
		t.Errorf("TotalBefore = %d, TotalAfter = %d, want equal", report.TotalBefore, report.TotalAfter)
	}
	if report.Deleted() != 0 {
		t.Errorf("Deleted() = %d, want 0", report.Deleted())
	}

	db := testutil.OpenStore(t, dst)
	if got := testutil.CountKeys(t, db, "composerData:"); got != 2 {
		t.Errorf("composer rows = %d, want 2", got)
	}
	if got := testutil.CountKeys(t, db, "bubbleId:"); got != 3 {
		t.Errorf("bubble rows = %d, want 3", got)
	}
}

func TestFilterStoreKeepsAllowedConversations(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	src := filepath.Join(tmpDir, "state.vscdb")
	dst := filepath.Join(tmpDir, "filtered.vscdb")
	seedFilterStore(t, src)

	report, err := FilterStore(src, dst, []string{"Alpha"}, nil)
	if err != nil {
		t.Fatalf("FilterStore() returned error: %v", err)
	}

	if !report.Filtered {
		t.Error("Filtered = false, want true")
	}
	if report.AllowedConversations != 1 {
		t.Errorf("AllowedConversations = %d, want 1", report.AllowedConversations)
	}
	if report.DeletedComposers != 1 {
		t.Errorf("DeletedComposers = %d, want 1", report.DeletedComposers)
	}
	if report.DeletedBubbles != 1 {
		t.Errorf("DeletedBubbles = %d, want 1", report.DeletedBubbles)
	}
	if report.DeletedContexts != 1 {
		t.Errorf("DeletedContexts = %d, want 1", report.DeletedContexts)
	}

	db := testutil.OpenStore(t, dst)
	if _, err := GetRecord(db, "composerData:conv-keep"); err != nil {
		t.Error("allowed composer missing from filtered store")
	}
	if got := testutil.CountKeys(t, db, "bubbleId:"); got != 2 {
		t.Errorf("bubble rows = %d, want 2 (only conv-keep's)", got)
	}
	if got := testutil.CountKeys(t, db, "messageRequestContext:"); got != 1 {
		t.Errorf("context rows = %d, want 1", got)
	}

	// Every conversation-bearing record of the dropped conversation is gone
	if _, err := GetRecord(db, "composerData:conv-drop"); !errors.Is(err, sql.ErrNoRows) {
		t.Error("dropped composer survived filtering")
	}
	if got := testutil.CountKeys(t, db, "bubbleId:conv-drop:"); got != 0 {
		t.Errorf("conv-drop bubble rows = %d, want 0", got)
	}
	if got := testutil.CountKeys(t, db, "messageRequestContext:conv-drop:"); got != 0 {
		t.Errorf("conv-drop context rows = %d, want 0", got)
	}

	// Diff records are exempt from filtering for both conversations
	if got := testutil.CountKeys(t, db, "codeBlockDiff:"); got != 2 {
		t.Errorf("diff rows = %d, want 2", got)
	}

	// The source store is untouched
	srcDB := testutil.OpenStore(t, src)
	total, err := CountRecords(srcDB)
	if err != nil {
		t.Fatalf("CountRecords(src) returned error: %v", err)
	}
	if total != report.TotalBefore {
		t.Errorf("source rows = %d, want %d", total, report.TotalBefore)
	}
}

func TestFilterStoreZeroMatchesEmptiesFamilies(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	src := filepath.Join(tmpDir, "state.vscdb")
	dst := filepath.Join(tmpDir, "filtered.vscdb")
	seedFilterStore(t, src)

	report, err := FilterStore(src, dst, []string{"NoSuchProject"}, nil)
	if err != nil {
		t.Fatalf("FilterStore() returned error: %v", err)
	}

	if report.AllowedConversations != 0 {
		t.Errorf("AllowedConversations = %d, want 0", report.AllowedConversations)
	}
	if report.DeletedComposers != 2 {
		t.Errorf("DeletedComposers = %d, want 2", report.DeletedComposers)
	}

	db := testutil.OpenStore(t, dst)
	for _, prefix := range []string{"composerData:", "bubbleId:", "messageRequestContext:"} {
		if got := testutil.CountKeys(t, db, prefix); got != 0 {
			t.Errorf("%s rows = %d, want 0", prefix, got)
		}
	}
	if got := testutil.CountKeys(t, db, "codeBlockDiff:"); got != 2 {
		t.Errorf("diff rows = %d, want 2", got)
	}
}

func TestFilterStoreIdempotent(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	src := filepath.Join(tmpDir, "state.vscdb")
	once := filepath.Join(tmpDir, "once.vscdb")
	twice := filepath.Join(tmpDir, "twice.vscdb")
	seedFilterStore(t, src)
	allowed := []string{"Alpha"}

	first, err := FilterStore(src, once, allowed, nil)
	if err != nil {
		t.Fatalf("first FilterStore() returned error: %v", err)
	}

	second, err := FilterStore(once, twice, allowed, nil)
	if err != nil {
		t.Fatalf("second FilterStore() returned error: %v", err)
	}

	if second.Deleted() != 0 {
		t.Errorf("second pass Deleted() = %d, want 0", second.Deleted())
	}
	if second.TotalAfter != first.TotalAfter {
		t.Errorf("second pass TotalAfter = %d, want %d", second.TotalAfter, first.TotalAfter)
	}
	if second.AllowedConversations != first.AllowedConversations {
		t.Errorf("second pass AllowedConversations = %d, want %d",
			second.AllowedConversations, first.AllowedConversations)
	}
}

func TestFilterStoreMissingSource(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	src := filepath.Join(tmpDir, "absent.vscdb")
	dst := filepath.Join(tmpDir, "filtered.vscdb")

	_, err := FilterStore(src, dst, []string{"Alpha"}, nil)
	if err == nil {
		t.Fatal("FilterStore() on a missing source should fail")
	}
	var filterErr *FilterError
	if !errors.As(err, &filterErr) {
		t.Fatalf("error type = %T, want *FilterError", err)
	}
	if filterErr.Stage != "copy" {
		t.Errorf("Stage = %q, want %q", filterErr.Stage, "copy")
	}
}

func TestFilterStoreReportsSkippedRecords(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	src := filepath.Join(tmpDir, "state.vscdb")
	dst := filepath.Join(tmpDir, "filtered.vscdb")

	db := testutil.CreateStoreDB(t, src)
	testutil.InsertComposer(t, db, "conv-1",
		`{"fullConversationHeadersOnly":[{"bubbleId":"bub-1","type":1}]}`)
	testutil.InsertBubble(t, db, "conv-1", "bub-1",
		`{"relevantFiles":["/home/dev/Alpha/main.go"]}`)
	testutil.InsertComposer(t, db, "conv-broken", `{truncated`)
	testutil.InsertContext(t, db, "conv-broken", "ctx-1", `also broken`)
	if err := db.Close(); err != nil {
		t.Fatalf("close seed store: %v", err)
	}

	report, err := FilterStore(src, dst, []string{"Alpha"}, nil)
	if err != nil {
		t.Fatalf("FilterStore() returned error: %v", err)
	}

	if report.SkippedComposers != 1 {
		t.Errorf("SkippedComposers = %d, want 1", report.SkippedComposers)
	}
	if report.SkippedLayouts != 1 {
		t.Errorf("SkippedLayouts = %d, want 1", report.SkippedLayouts)
	}
	if report.AllowedConversations != 1 {
		t.Errorf("AllowedConversations = %d, want 1", report.AllowedConversations)
	}
}

func TestCopyFile(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	src := filepath.Join(tmpDir, "src.bin")
	dst := filepath.Join(tmpDir, "nested", "dir", "dst.bin")
	content := []byte("store bytes")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() returned error: %v", err)
	}

	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(copied) != string(content) {
		t.Errorf("copied content = %q, want %q", copied, content)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	err := CopyFile(filepath.Join(tmpDir, "absent"), filepath.Join(tmpDir, "dst"))
	if err == nil {
		t.Fatal("CopyFile() on a missing source should fail")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("error type = %T, want *StorageError", err)
	}
}
