package internal

import "fmt"

// StorageError represents errors accessing store files
type StorageError struct {
	Path string
	Op   string // "open", "copy", "query", "delete", "vacuum"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding a stored record
type ParseError struct {
	Source string // record family or file kind
	Key    string // storage key or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FilterError represents a failure of one stage of the filter pass
type FilterError struct {
	Stage string // "copy", "open", "count", "attribute", "vacuum"
	Err   error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter error [%s]: %v", e.Stage, e.Err)
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// ConfigError represents errors reading or writing configuration files
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ReconstructionError represents errors during conversation reconstruction
type ReconstructionError struct {
	ComposerID string
	Err        error
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("reconstruction error [%s]: %v", e.ComposerID, e.Err)
}

func (e *ReconstructionError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
