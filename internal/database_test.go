package internal

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cursorvault/cursor-vault/testutil"
)

func TestOpenDatabase(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(tmpDir, "state.vscdb")
	testutil.CreateSQLiteFixture(t, dbPath)

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() returned error: %v", err)
	}
	defer db.Close()

	if _, err := CountRecords(db); err != nil {
		t.Errorf("CountRecords() on opened store: %v", err)
	}
}

func TestOpenDatabaseMissingFile(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	_, err := OpenDatabase(filepath.Join(tmpDir, "missing", "state.vscdb"))
	if err == nil {
		t.Fatal("OpenDatabase() on a missing file should fail")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("error type = %T, want *StorageError", err)
	}
}

func TestQueryFamily(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertComposer(t, db, "conv-1", `{"name":"one"}`)
	testutil.InsertComposer(t, db, "conv-2", `{"name":"two"}`)
	testutil.InsertBubble(t, db, "conv-1", "bub-1", `{"text":"hi"}`)
	testutil.InsertCodeBlockDiff(t, db, "conv-1", "diff-1", `{}`)

	pairs, err := QueryFamily(db, FamilyComposer)
	if err != nil {
		t.Fatalf("QueryFamily() returned error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("QueryFamily(composer) = %d pairs, want 2", len(pairs))
	}
	// ORDER BY key keeps results deterministic
	if pairs[0].Key != "composerData:conv-1" {
		t.Errorf("pairs[0].Key = %q, want %q", pairs[0].Key, "composerData:conv-1")
	}
	if pairs[1].Key != "composerData:conv-2" {
		t.Errorf("pairs[1].Key = %q, want %q", pairs[1].Key, "composerData:conv-2")
	}
}

func TestQueryFamilyExcludesOtherFamilies(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	// A key sorting just past the family range must not leak in.
	testutil.InsertRecord(t, db, "bubbleId:conv-1:bub-1", `{}`)
	testutil.InsertRecord(t, db, "bubbleIdX:other", `{}`)
	testutil.InsertRecord(t, db, "bubbleI:other", `{}`)

	pairs, err := QueryFamily(db, FamilyBubble)
	if err != nil {
		t.Fatalf("QueryFamily() returned error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("QueryFamily(bubble) = %d pairs, want 1", len(pairs))
	}
	if pairs[0].Key != "bubbleId:conv-1:bub-1" {
		t.Errorf("pairs[0].Key = %q", pairs[0].Key)
	}
}

func TestQueryFamilySkipsNullValues(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertBubble(t, db, "conv-1", "bub-1", `{"text":"kept"}`)
	if _, err := db.Exec("INSERT INTO cursorDiskKV (key, value) VALUES (?, NULL)", "bubbleId:conv-1:bub-null"); err != nil {
		t.Fatalf("insert null row: %v", err)
	}

	pairs, err := QueryFamily(db, FamilyBubble)
	if err != nil {
		t.Fatalf("QueryFamily() returned error: %v", err)
	}
	if len(pairs) != 1 {
		t.Errorf("QueryFamily() = %d pairs, want 1 (NULL row skipped)", len(pairs))
	}
}

func TestQueryConversationFamily(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertBubble(t, db, "conv-1", "bub-1", `{"text":"a"}`)
	testutil.InsertBubble(t, db, "conv-1", "bub-2", `{"text":"b"}`)
	testutil.InsertBubble(t, db, "conv-2", "bub-3", `{"text":"c"}`)
	// conv-10 shares conv-1 as a string prefix but is a different conversation
	testutil.InsertBubble(t, db, "conv-10", "bub-4", `{"text":"d"}`)

	pairs, err := QueryConversationFamily(db, FamilyBubble, "conv-1")
	if err != nil {
		t.Fatalf("QueryConversationFamily() returned error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("QueryConversationFamily(conv-1) = %d pairs, want 2", len(pairs))
	}
	for _, pair := range pairs {
		rk, err := ParseRecordKey(pair.Key)
		if err != nil {
			t.Fatalf("ParseRecordKey(%q): %v", pair.Key, err)
		}
		if rk.ConversationID != "conv-1" {
			t.Errorf("leaked key %q from another conversation", pair.Key)
		}
	}
}

func TestGetRecord(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertComposer(t, db, "conv-1", `{"name":"one"}`)

	value, err := GetRecord(db, "composerData:conv-1")
	if err != nil {
		t.Fatalf("GetRecord() returned error: %v", err)
	}
	if value != `{"name":"one"}` {
		t.Errorf("GetRecord() = %q", value)
	}
}

func TestGetRecordMissing(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	_, err := GetRecord(db, "composerData:absent")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetRecord(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestGetRecordNullValue(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	if _, err := db.Exec("INSERT INTO cursorDiskKV (key, value) VALUES (?, NULL)", "composerData:conv-1"); err != nil {
		t.Fatalf("insert null row: %v", err)
	}

	_, err := GetRecord(db, "composerData:conv-1")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetRecord(null) error = %v, want sql.ErrNoRows", err)
	}
}

func TestQueryFamilyKeysIncludesNullValues(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertBubble(t, db, "conv-1", "bub-1", `{}`)
	if _, err := db.Exec("INSERT INTO cursorDiskKV (key, value) VALUES (?, NULL)", "bubbleId:conv-1:bub-null"); err != nil {
		t.Fatalf("insert null row: %v", err)
	}

	keys, err := QueryFamilyKeys(db, FamilyBubble)
	if err != nil {
		t.Fatalf("QueryFamilyKeys() returned error: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("QueryFamilyKeys() = %d keys, want 2 (NULL rows included)", len(keys))
	}
}

func TestCountRecordsAndFamily(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertComposer(t, db, "conv-1", `{}`)
	testutil.InsertBubble(t, db, "conv-1", "bub-1", `{}`)
	testutil.InsertBubble(t, db, "conv-1", "bub-2", `{}`)
	testutil.InsertContext(t, db, "conv-1", "ctx-1", `{}`)

	total, err := CountRecords(db)
	if err != nil {
		t.Fatalf("CountRecords() returned error: %v", err)
	}
	if total != 4 {
		t.Errorf("CountRecords() = %d, want 4", total)
	}

	bubbles, err := CountFamily(db, FamilyBubble)
	if err != nil {
		t.Fatalf("CountFamily() returned error: %v", err)
	}
	if bubbles != 2 {
		t.Errorf("CountFamily(bubble) = %d, want 2", bubbles)
	}

	diffs, err := CountFamily(db, FamilyCodeBlockDiff)
	if err != nil {
		t.Fatalf("CountFamily() returned error: %v", err)
	}
	if diffs != 0 {
		t.Errorf("CountFamily(diff) = %d, want 0", diffs)
	}
}

func TestDeleteComposersExcept(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertComposer(t, db, "conv-1", `{}`)
	testutil.InsertComposer(t, db, "conv-2", `{}`)
	testutil.InsertComposer(t, db, "conv-3", `{}`)
	testutil.InsertBubble(t, db, "conv-1", "bub-1", `{}`)

	deleted, err := DeleteComposersExcept(db, map[string]bool{"conv-2": true})
	if err != nil {
		t.Fatalf("DeleteComposersExcept() returned error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	if _, err := GetRecord(db, "composerData:conv-2"); err != nil {
		t.Error("kept composer was deleted")
	}
	if _, err := GetRecord(db, "composerData:conv-1"); !errors.Is(err, sql.ErrNoRows) {
		t.Error("non-kept composer survived")
	}
	// Other families are untouched
	if got := testutil.CountKeys(t, db, "bubbleId:"); got != 1 {
		t.Errorf("bubble rows = %d, want 1", got)
	}
}

func TestDeleteComposersExceptEmptyKeep(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertComposer(t, db, "conv-1", `{}`)
	testutil.InsertComposer(t, db, "conv-2", `{}`)

	deleted, err := DeleteComposersExcept(db, nil)
	if err != nil {
		t.Fatalf("DeleteComposersExcept() returned error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if got := testutil.CountKeys(t, db, "composerData:"); got != 0 {
		t.Errorf("composer rows = %d, want 0", got)
	}
}

func TestDeleteKeys(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertBubble(t, db, "conv-1", "bub-1", `{}`)
	testutil.InsertBubble(t, db, "conv-1", "bub-2", `{}`)
	testutil.InsertBubble(t, db, "conv-2", "bub-3", `{}`)

	deleted, err := DeleteKeys(db, []string{
		"bubbleId:conv-1:bub-1",
		"bubbleId:conv-1:bub-2",
		"bubbleId:conv-1:bub-absent",
	})
	if err != nil {
		t.Fatalf("DeleteKeys() returned error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if got := testutil.CountKeys(t, db, "bubbleId:"); got != 1 {
		t.Errorf("bubble rows = %d, want 1", got)
	}
}

func TestDeleteKeysEmpty(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	deleted, err := DeleteKeys(db, nil)
	if err != nil {
		t.Fatalf("DeleteKeys(nil) returned error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestDeleteFamily(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertBubble(t, db, "conv-1", "bub-1", `{}`)
	testutil.InsertBubble(t, db, "conv-2", "bub-2", `{}`)
	testutil.InsertComposer(t, db, "conv-1", `{}`)

	deleted, err := DeleteFamily(db, FamilyBubble)
	if err != nil {
		t.Fatalf("DeleteFamily() returned error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if got := testutil.CountKeys(t, db, "bubbleId:"); got != 0 {
		t.Errorf("bubble rows = %d, want 0", got)
	}
	if got := testutil.CountKeys(t, db, "composerData:"); got != 1 {
		t.Errorf("composer rows = %d, want 1", got)
	}
}

func TestVacuum(t *testing.T) {
	tmpDir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(tmpDir, "state.vscdb")
	db := testutil.CreateStoreDB(t, dbPath)
	testutil.InsertComposer(t, db, "conv-1", `{}`)

	if err := Vacuum(db); err != nil {
		t.Errorf("Vacuum() returned error: %v", err)
	}
}
