package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WorkspaceInfo represents one workspace folder descriptor
type WorkspaceInfo struct {
	Hash string
	Path string
	Name string
}

// DetectWorkspaces scans workspaceStorage/<hash>/workspace.json descriptors.
// A missing directory yields an empty map; descriptors that fail to decode
// still appear with their hash so callers can show them as unnamed.
func DetectWorkspaces(basePath string) (map[string]*WorkspaceInfo, error) {
	workspaceStorage := filepath.Join(basePath, "workspaceStorage")
	workspaces := make(map[string]*WorkspaceInfo)

	entries, err := os.ReadDir(workspaceStorage)
	if err != nil {
		return workspaces, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		hash := entry.Name()
		info := &WorkspaceInfo{Hash: hash}

		workspaceJSONPath := filepath.Join(workspaceStorage, hash, "workspace.json")
		if data, err := os.ReadFile(workspaceJSONPath); err == nil {
			var workspaceData struct {
				Folder string `json:"folder"`
			}
			if err := json.Unmarshal(data, &workspaceData); err == nil {
				info.Path = strings.TrimPrefix(workspaceData.Folder, "file://")
				if info.Path != "" {
					info.Name = filepath.Base(info.Path)
				}
			}
		}

		workspaces[hash] = info
	}

	return workspaces, nil
}

// ProjectCatalog maps project names to workspace hashes. The list/search
// surfaces derive their allow-list from it; the filter uses the configured
// allow-list instead.
type ProjectCatalog map[string]string

// BuildProjectCatalog derives name → workspace hash from scanned
// descriptors. Nameless descriptors are skipped; when two workspaces share
// a name, the lexically smallest hash wins so the result is stable.
func BuildProjectCatalog(workspaces map[string]*WorkspaceInfo) ProjectCatalog {
	hashes := make([]string, 0, len(workspaces))
	for hash := range workspaces {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	catalog := make(ProjectCatalog)
	for _, hash := range hashes {
		ws := workspaces[hash]
		if ws == nil || ws.Name == "" {
			continue
		}
		if _, ok := catalog[ws.Name]; !ok {
			catalog[ws.Name] = hash
		}
	}
	return catalog
}

// Names returns the catalog's project names sorted, so an allow-list
// derived from the map matches deterministically.
func (c ProjectCatalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
