//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// manifestFileName is the run manifest inside the manifests folder.
const manifestFileName = "manifest.json"

// ManifestEntry records one persisted artifact of a run. The manifest is
// what lets a restarted process enumerate a run's artifacts without
// touching the mirror backend.
type ManifestEntry struct {
	// Name is the artifact's logical name.
	Name string `json:"name"`
	// Category is the workspace category the artifact was routed to.
	Category Category `json:"category"`
	// Version is the artifact's version, strictly increasing per name.
	Version int `json:"version"`
	// Path is the absolute primary location on local storage.
	Path string `json:"path"`
	// MirrorRef is the mirror backend reference, if mirrored.
	MirrorRef string `json:"mirror_ref,omitempty"`
	// Mirrored reports whether the mirror write succeeded.
	Mirrored bool `json:"mirrored"`
	// Tool is the producing tool's name.
	Tool string `json:"tool,omitempty"`
	// CreatedAt is when the artifact was persisted.
	CreatedAt time.Time `json:"created_at"`
}

// AppendManifest appends entries to the run's manifest.
func AppendManifest(root string, entries ...ManifestEntry) error {
	if len(entries) == 0 {
		return nil
	}
	existing, err := ReadManifest(root)
	if err != nil {
		return err
	}
	existing = append(existing, entries...)

	raw, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return stageErr(StagePersistence, fmt.Errorf("encode manifest: %w", err))
	}
	path := filepath.Join(root, CategoryManifest.Dir(), manifestFileName)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return stageErr(StagePersistence, fmt.Errorf("write manifest: %w", err))
	}
	return nil
}

// ReadManifest reads the run's manifest. A missing manifest is an empty
// one.
func ReadManifest(root string) ([]ManifestEntry, error) {
	path := filepath.Join(root, CategoryManifest.Dir(), manifestFileName)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, stageErr(StagePersistence, fmt.Errorf("read manifest: %w", err))
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, stageErr(StagePersistence, fmt.Errorf("decode manifest: %w", err))
	}
	return entries, nil
}

// LatestEntry returns the highest-version manifest entry for a logical
// name without the caller having to walk version history.
func LatestEntry(entries []ManifestEntry, name string) (ManifestEntry, bool) {
	var latest ManifestEntry
	found := false
	for _, entry := range entries {
		if entry.Name != name {
			continue
		}
		if !found || entry.Version > latest.Version {
			latest = entry
			found = true
		}
	}
	return latest, found
}
