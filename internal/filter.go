package internal

import (
	"database/sql"
	"io"
	"os"
	"path/filepath"
)

// FilterReport summarizes one filter pass.
type FilterReport struct {
	SourcePath string
	DestPath   string

	TotalBefore int64
	TotalAfter  int64

	// Filtered reports whether an attribution pass ran (false for an empty
	// allow-list, where the copy is only compacted).
	Filtered             bool
	AllowedConversations int

	DeletedComposers int64
	DeletedBubbles   int64
	DeletedContexts  int64

	// Unparseable records encountered along the way, per signal source.
	SkippedComposers int
	SkippedLayouts   int
	SkippedBubbles   int
	SkippedContexts  int
}

// Deleted returns the total number of deleted records.
func (r *FilterReport) Deleted() int64 {
	return r.DeletedComposers + r.DeletedBubbles + r.DeletedContexts
}

// Skipped returns the total number of records skipped as unparseable.
func (r *FilterReport) Skipped() int {
	return r.SkippedComposers + r.SkippedLayouts + r.SkippedBubbles + r.SkippedContexts
}

// FilterStore copies the store at src to dst and deletes every record of the
// three conversation-bearing families whose conversation is not attributed
// to an allowed project. With a non-empty allow-list and zero attributed
// conversations the three families are emptied outright. codeBlockDiff
// records are never touched. The copy is always compacted, even when no
// filtering applies. On error the destination may hold partially modified
// state; the caller decides the fallback (see ShadowManager).
func FilterStore(src, dst string, allowed []string, events *EventLog) (*FilterReport, error) {
	report := &FilterReport{SourcePath: src, DestPath: dst}

	if err := CopyFile(src, dst); err != nil {
		return report, &FilterError{Stage: "copy", Err: err}
	}
	events.Event("copied %s -> %s", src, dst)

	db, err := OpenDatabaseRW(dst)
	if err != nil {
		return report, &FilterError{Stage: "open", Err: err}
	}
	defer db.Close()

	report.TotalBefore, err = CountRecords(db)
	if err != nil {
		return report, &FilterError{Stage: "count", Err: err}
	}
	events.Event("records before filtering: %d", report.TotalBefore)

	if len(allowed) > 0 {
		if err := filterConversations(db, allowed, report, events); err != nil {
			return report, err
		}
		report.Filtered = true
	}

	if err := Vacuum(db); err != nil {
		return report, &FilterError{Stage: "vacuum", Err: err}
	}

	report.TotalAfter, err = CountRecords(db)
	if err != nil {
		return report, &FilterError{Stage: "count", Err: err}
	}
	events.Event("records after filtering: %d (deleted %d, skipped %d unparseable)",
		report.TotalAfter, report.Deleted(), report.Skipped())

	return report, nil
}

// filterConversations runs the attribution pass and the per-family delete
// passes. A family whose delete fails is logged and skipped; partial
// filtering is acceptable, forcing total failure is not.
func filterConversations(db *sql.DB, allowed []string, report *FilterReport, events *EventLog) error {
	storage := NewStorage(db)

	layouts, skippedLayouts, err := storage.LoadProjectLayouts()
	if err != nil {
		return &FilterError{Stage: "attribute", Err: err}
	}
	report.SkippedLayouts = skippedLayouts

	bubbles, skippedBubbles, err := storage.LoadBubbleIndex()
	if err != nil {
		return &FilterError{Stage: "attribute", Err: err}
	}
	report.SkippedBubbles = skippedBubbles

	contextKeys, skippedContexts, err := storage.KeysByConversation(FamilyRequestContext)
	if err != nil {
		return &FilterError{Stage: "attribute", Err: err}
	}
	report.SkippedContexts = skippedContexts

	composers, skippedComposers, err := storage.LoadComposers()
	if err != nil {
		return &FilterError{Stage: "attribute", Err: err}
	}
	report.SkippedComposers = skippedComposers

	engine := NewEngine(allowed)
	keep := make(map[string]bool)
	for _, composer := range composers {
		sig := BuildSignals(composer, layouts, bubbles)
		if project, strategy, ok := engine.Attribute(sig); ok {
			keep[composer.ComposerID] = true
			LogDebug("conversation %s attributed to %q via %s", composer.ComposerID, project, strategy)
		}
	}
	report.SkippedBubbles += engine.SkippedBubblePayloads
	report.AllowedConversations = len(keep)

	if len(keep) == 0 {
		// An active allow-list that matches nothing empties the conversation
		// families rather than passing everything through.
		events.Event("no conversation matched the allow-list; clearing conversation families")

		if n, err := DeleteFamily(db, FamilyComposer); err != nil {
			LogWarn("composer delete skipped: %v", err)
			events.Event("composer delete skipped: %v", err)
		} else {
			report.DeletedComposers = n
		}
		if n, err := DeleteFamily(db, FamilyBubble); err != nil {
			LogWarn("bubble delete skipped: %v", err)
			events.Event("bubble delete skipped: %v", err)
		} else {
			report.DeletedBubbles = n
		}
		if n, err := DeleteFamily(db, FamilyRequestContext); err != nil {
			LogWarn("context delete skipped: %v", err)
			events.Event("context delete skipped: %v", err)
		} else {
			report.DeletedContexts = n
		}

		events.Event("deleted %d composers, %d bubbles, %d contexts",
			report.DeletedComposers, report.DeletedBubbles, report.DeletedContexts)
		return nil
	}

	if n, err := DeleteComposersExcept(db, keep); err != nil {
		LogWarn("composer delete skipped: %v", err)
		events.Event("composer delete skipped: %v", err)
	} else {
		report.DeletedComposers = n
	}

	var bubbleKeys []string
	for conversationID, keys := range bubbles.Keys {
		if !keep[conversationID] {
			bubbleKeys = append(bubbleKeys, keys...)
		}
	}
	if n, err := DeleteKeys(db, bubbleKeys); err != nil {
		LogWarn("bubble delete skipped: %v", err)
		events.Event("bubble delete skipped: %v", err)
	} else {
		report.DeletedBubbles = n
	}

	var ctxKeys []string
	for conversationID, keys := range contextKeys {
		if !keep[conversationID] {
			ctxKeys = append(ctxKeys, keys...)
		}
	}
	if n, err := DeleteKeys(db, ctxKeys); err != nil {
		LogWarn("context delete skipped: %v", err)
		events.Event("context delete skipped: %v", err)
	} else {
		report.DeletedContexts = n
	}

	events.Event("kept %d conversation(s); deleted %d composers, %d bubbles, %d contexts",
		len(keep), report.DeletedComposers, report.DeletedBubbles, report.DeletedContexts)
	return nil
}

// CopyFile duplicates src to dst byte for byte, creating the destination's
// parent directory as needed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &StorageError{Path: src, Op: "copy", Err: err}
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return &StorageError{Path: dst, Op: "copy", Err: err}
	}

	out, err := os.Create(dst)
	if err != nil {
		return &StorageError{Path: dst, Op: "copy", Err: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &StorageError{Path: dst, Op: "copy", Err: err}
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return &StorageError{Path: dst, Op: "copy", Err: err}
	}

	return out.Close()
}
