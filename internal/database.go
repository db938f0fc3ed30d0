package internal

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenDatabase opens a store in read-only mode
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	return db, nil
}

// OpenDatabaseRW opens a store for the filter pass. Only shadow and filtered
// copies are ever opened this way; the IDE's own store is read-only to us.
func OpenDatabaseRW(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	return db, nil
}

// KeyValuePair represents a key-value pair from cursorDiskKV
type KeyValuePair struct {
	Key   string
	Value string
}

// QueryFamily returns every record of one family. The half-open key range
// walks the primary-key index instead of scanning the whole table.
func QueryFamily(db *sql.DB, family RecordFamily) ([]KeyValuePair, error) {
	lo, hi := family.KeyRange()
	pairs, err := queryRange(db, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", family, err)
	}
	return pairs, nil
}

// QueryConversationFamily returns one family's records scoped to a single
// conversation
func QueryConversationFamily(db *sql.DB, family RecordFamily, conversationID string) ([]KeyValuePair, error) {
	lo := family.Prefix() + conversationID + ":"
	hi := family.Prefix() + conversationID + ";"
	pairs, err := queryRange(db, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("query %s for %s failed: %w", family, conversationID, err)
	}
	return pairs, nil
}

func queryRange(db *sql.DB, lo, hi string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM cursorDiskKV WHERE key >= ? AND key < ? AND value IS NOT NULL ORDER BY key"
	rows, err := db.Query(query, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// GetRecord returns the value stored under one exact key. Missing keys and
// NULL values both report sql.ErrNoRows.
func GetRecord(db *sql.DB, key string) (string, error) {
	var value sql.NullString
	err := db.QueryRow("SELECT value FROM cursorDiskKV WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	if !value.Valid {
		return "", sql.ErrNoRows
	}
	return value.String, nil
}

// QueryFamilyKeys returns every key of one family, including rows whose
// value is NULL (the delete pass still has to remove them).
func QueryFamilyKeys(db *sql.DB, family RecordFamily) ([]string, error) {
	lo, hi := family.KeyRange()
	rows, err := db.Query("SELECT key FROM cursorDiskKV WHERE key >= ? AND key < ? ORDER BY key", lo, hi)
	if err != nil {
		return nil, fmt.Errorf("query %s keys failed: %w", family, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}

// CountRecords returns the total number of rows in cursorDiskKV
func CountRecords(db *sql.DB) (int64, error) {
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM cursorDiskKV").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// CountFamily returns the number of rows in one family
func CountFamily(db *sql.DB, family RecordFamily) (int64, error) {
	lo, hi := family.KeyRange()
	var n int64
	err := db.QueryRow("SELECT COUNT(*) FROM cursorDiskKV WHERE key >= ? AND key < ?", lo, hi).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", family, err)
	}
	return n, nil
}

// DeleteComposersExcept removes every composer record whose conversation id
// is not in keep, as a single bulk statement. An empty keep set removes the
// whole family.
func DeleteComposersExcept(db *sql.DB, keep map[string]bool) (int64, error) {
	lo, hi := FamilyComposer.KeyRange()
	query := "DELETE FROM cursorDiskKV WHERE key >= ? AND key < ?"
	args := []interface{}{lo, hi}

	if len(keep) > 0 {
		placeholders := make([]string, 0, len(keep))
		for id := range keep {
			placeholders = append(placeholders, "?")
			args = append(args, FamilyComposer.Prefix()+id)
		}
		query += " AND key NOT IN (" + strings.Join(placeholders, ",") + ")"
	}

	res, err := db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("composer delete failed: %w", err)
	}
	return res.RowsAffected()
}

// DeleteKeys removes the given keys inside one transaction, so a mid-batch
// failure never leaves a family half-deleted.
func DeleteKeys(db *sql.DB, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM cursorDiskKV WHERE key = ?")
	if err != nil {
		return 0, fmt.Errorf("prepare delete: %w", err)
	}
	defer stmt.Close()

	var deleted int64
	for _, key := range keys {
		res, err := stmt.Exec(key)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for %s: %w", key, err)
		}
		deleted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete transaction: %w", err)
	}

	return deleted, nil
}

// DeleteFamily removes every record of one family
func DeleteFamily(db *sql.DB, family RecordFamily) (int64, error) {
	lo, hi := family.KeyRange()
	res, err := db.Exec("DELETE FROM cursorDiskKV WHERE key >= ? AND key < ?", lo, hi)
	if err != nil {
		return 0, fmt.Errorf("delete %s failed: %w", family, err)
	}
	return res.RowsAffected()
}

// Vacuum rebuilds the store file so space freed by deletions is returned to
// the filesystem
func Vacuum(db *sql.DB) error {
	if _, err := db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}
	return nil
}
