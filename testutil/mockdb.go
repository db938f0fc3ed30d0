package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// Each pooled connection would get its own private in-memory database,
	// so pin the pool to a single connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	createKVTable(t, db)
	return db
}

// CreateStoreDB creates an on-disk store at dbPath with the cursorDiskKV
// table, so copy and filter paths that work on files can be exercised.
func CreateStoreDB(t *testing.T, dbPath string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to create database at %s: %v", dbPath, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	createKVTable(t, db)
	return db
}

func createKVTable(t *testing.T, db *sql.DB) {
	t.Helper()
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS cursorDiskKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create cursorDiskKV table: %v", err)
	}
}

// CreateTestDB creates a test database with a small coherent sample: two
// conversations, their bubbles and one request context.
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	records := []struct {
		key   string
		value string
	}{
		{
			key:   "composerData:composer1",
			value: `{"composerId":"composer1","name":"Test Conversation","createdAt":1000,"lastUpdatedAt":2000,"fullConversationHeadersOnly":[{"bubbleId":"bubble1","type":1},{"bubbleId":"bubble2","type":2}]}`,
		},
		{
			key:   "composerData:composer2",
			value: `{"composerId":"composer2","name":"Another Conversation","createdAt":3000,"lastUpdatedAt":4000,"fullConversationHeadersOnly":[{"bubbleId":"bubble3","type":1}]}`,
		},
		{
			key:   "bubbleId:composer1:bubble1",
			value: `{"text":"Hello","timestamp":1000,"type":1}`,
		},
		{
			key:   "bubbleId:composer1:bubble2",
			value: `{"text":"Hi there","timestamp":2000,"type":2}`,
		},
		{
			key:   "bubbleId:composer2:bubble3",
			value: `{"text":"How are you?","timestamp":3000,"type":1}`,
		},
		{
			key:   "messageRequestContext:composer1:context1",
			value: `{"bubbleId":"bubble1"}`,
		},
	}

	for _, record := range records {
		InsertRecord(t, db, record.key, record.value)
	}

	return db
}

// InsertRecord inserts one key/value row into cursorDiskKV
func InsertRecord(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT INTO cursorDiskKV (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert record %s: %v", key, err)
	}
}

// InsertBubble inserts a bubble record for the conversation
func InsertBubble(t *testing.T, db *sql.DB, conversationID, bubbleID, value string) {
	t.Helper()
	InsertRecord(t, db, "bubbleId:"+conversationID+":"+bubbleID, value)
}

// InsertComposer inserts a composer record for the conversation
func InsertComposer(t *testing.T, db *sql.DB, conversationID, value string) {
	t.Helper()
	InsertRecord(t, db, "composerData:"+conversationID, value)
}

// InsertContext inserts a request context record for the conversation
func InsertContext(t *testing.T, db *sql.DB, conversationID, contextID, value string) {
	t.Helper()
	InsertRecord(t, db, "messageRequestContext:"+conversationID+":"+contextID, value)
}

// InsertCodeBlockDiff inserts a code block diff record for the conversation
func InsertCodeBlockDiff(t *testing.T, db *sql.DB, conversationID, diffID, value string) {
	t.Helper()
	InsertRecord(t, db, "codeBlockDiff:"+conversationID+":"+diffID, value)
}

// CountKeys returns the number of rows whose key starts with prefix. The
// prefix must end with the ':' delimiter; ';' is the next byte up.
func CountKeys(t *testing.T, db *sql.DB, prefix string) int {
	t.Helper()
	if prefix == "" || prefix[len(prefix)-1] != ':' {
		t.Fatalf("CountKeys prefix must end with ':', got %q", prefix)
	}
	var count int
	query := "SELECT COUNT(*) FROM cursorDiskKV WHERE key >= ? AND key < ?"
	hi := prefix[:len(prefix)-1] + ";"
	if err := db.QueryRow(query, prefix, hi).Scan(&count); err != nil {
		t.Fatalf("Failed to count keys with prefix %s: %v", prefix, err)
	}
	return count
}
