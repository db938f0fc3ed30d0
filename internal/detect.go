package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StoragePaths holds the resolved Cursor storage layout
type StoragePaths struct {
	BasePath         string // base Cursor User directory
	WorkspaceStorage string // workspaceStorage directory
	GlobalStorage    string // globalStorage directory
}

// DetectStoragePaths resolves the storage layout for the current OS. A
// non-empty override (flag or config) takes precedence; it may point at the
// User directory itself or directly at a state.vscdb file.
func DetectStoragePaths(override string) (StoragePaths, error) {
	if override != "" {
		return pathsFromOverride(override)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var basePath string
	switch runtime.GOOS {
	case "darwin":
		basePath = filepath.Join(home, "Library/Application Support/Cursor/User")
	case "linux":
		basePath = filepath.Join(home, ".config/Cursor/User")
		// Under WSL the store usually lives on the Windows side.
		if _, err := os.Stat(basePath); err != nil {
			if wsl := wslBasePath(); wsl != "" {
				basePath = wsl
			}
		}
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		basePath = filepath.Join(appData, "Cursor", "User")
	default:
		return StoragePaths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return pathsFromBase(basePath), nil
}

func pathsFromBase(basePath string) StoragePaths {
	return StoragePaths{
		BasePath:         basePath,
		WorkspaceStorage: filepath.Join(basePath, "workspaceStorage"),
		GlobalStorage:    filepath.Join(basePath, "globalStorage"),
	}
}

func pathsFromOverride(override string) (StoragePaths, error) {
	info, err := os.Stat(override)
	if err != nil {
		return StoragePaths{}, &StorageError{Path: override, Op: "open", Err: err}
	}

	base := override
	if !info.IsDir() {
		// Pointing at state.vscdb directly: the User dir is two levels up.
		base = filepath.Dir(filepath.Dir(override))
	}
	return pathsFromBase(base), nil
}

// wslBasePath probes for Windows-side Cursor storage reachable through the
// /mnt/c mount. Empty when not under WSL or nothing is there.
func wslBasePath() string {
	users, err := os.ReadDir("/mnt/c/Users")
	if err != nil {
		return ""
	}
	for _, u := range users {
		if !u.IsDir() {
			continue
		}
		candidate := filepath.Join("/mnt/c/Users", u.Name(), "AppData/Roaming/Cursor/User")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

// GetGlobalStorageDBPath returns the path to the globalStorage state.vscdb
// file, the source store this system never writes to.
func (sp StoragePaths) GetGlobalStorageDBPath() string {
	return filepath.Join(sp.GlobalStorage, "state.vscdb")
}

// GlobalStorageExists checks if the source store exists
func (sp StoragePaths) GlobalStorageExists() bool {
	_, err := os.Stat(sp.GetGlobalStorageDBPath())
	return err == nil
}
