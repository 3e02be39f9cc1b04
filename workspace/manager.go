//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package workspace manages the per-session, per-dataset run directories
// that all tool byproducts land in.
//
// Layout: {root}/{dataset_slug}/{run_id}/{category}/{filename}. A run
// binds one dataset to one session: the run id is generated once per
// session, every dataset bound in that session shares it, and a fresh
// session always produces a sibling run directory. The directory tree is
// additive-only; nothing here deletes or renames existing files.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"trpc.group/trpc-go/trpc-dataspace-go/log"
	"trpc.group/trpc-go/trpc-dataspace-go/session"
)

// runIDFormat is the sortable, second-resolution run token layout.
const runIDFormat = "20060102_150405"

// headerSampleLimit bounds how many bytes of an upload the header sniffer
// inspects.
const headerSampleLimit = 4096

// Manager creates and resolves workspace run directories.
type Manager struct {
	cfg Config
	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewManager creates a Manager and prepares the workspace root and the
// upload holding directory.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	for _, dir := range []string{cfg.Root, cfg.HoldingDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, stageErr(StageWorkspace, fmt.Errorf("create %s: %w", dir, err))
		}
	}
	return &Manager{cfg: cfg, now: time.Now}, nil
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// EnsureWorkspace returns the run directory for the dataset slug, creating
// it and its category subfolders on first use. For a fixed (session, slug)
// pair every call returns the identical path for the lifetime of the
// session. Directory-creation failures are fatal to the calling tool
// invocation: without a destination no artifact can be routed.
func (m *Manager) EnsureWorkspace(ctx context.Context, sess *session.Session, slug string) (string, error) {
	if slug == "" {
		if existing, ok := sess.GetState(session.KeyDatasetSlug); ok && len(existing) > 0 {
			slug = string(existing)
		} else {
			slug = GenericSlug
		}
	}

	// The run id is generated at most once per session; SetIfAbsent keeps
	// an established id stable no matter how many tools call in.
	runID, created := sess.SetIfAbsent(session.KeyRunID, []byte(m.now().Format(runIDFormat)))
	if created {
		log.Infof("workspace: session %s starts run %s", sess.ID, runID)
	}

	root, err := filepath.Abs(filepath.Join(m.cfg.Root, slug, string(runID)))
	if err != nil {
		return "", stageErr(StageWorkspace, fmt.Errorf("resolve run directory: %w", err))
	}

	paths := make(map[Category]string, len(categoryDirs))
	for _, category := range Categories() {
		dir := filepath.Join(root, category.Dir())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", stageErr(StageWorkspace, fmt.Errorf("create %s: %w", dir, err))
		}
		paths[category] = dir
	}

	if encoded, err := json.Marshal(paths); err == nil {
		sess.SetState(session.KeyWorkspacePaths, encoded)
	}

	return root, nil
}

// WorkspacePaths returns the category-to-path map of the session's active
// run, if a workspace has been ensured.
func (m *Manager) WorkspacePaths(sess *session.Session) (map[Category]string, bool) {
	raw, ok := sess.GetState(session.KeyWorkspacePaths)
	if !ok {
		return nil, false
	}
	paths := make(map[Category]string)
	if err := json.Unmarshal(raw, &paths); err != nil {
		return nil, false
	}
	return paths, true
}

// BindResult describes the outcome of binding an upload to a workspace.
type BindResult struct {
	// Slug is the resolved dataset slug.
	Slug string `json:"slug"`
	// RunID is the session's run token.
	RunID string `json:"run_id"`
	// RootPath is the absolute run directory.
	RootPath string `json:"root_path"`
	// StoredPath is the upload's location in the holding area.
	StoredPath string `json:"stored_path"`
	// DatasetPath is the bound dataset file inside the run's uploads folder.
	DatasetPath string `json:"dataset_path"`
	// Duplicate reports whether byte-identical content was already stored.
	Duplicate bool `json:"duplicate"`
}

// BindUpload registers raw upload bytes, resolves the dataset identity,
// ensures the workspace, and records the bound dataset file in the session
// state. Re-uploading byte-identical content is not an error: the existing
// binding is returned with Duplicate set.
func (m *Manager) BindUpload(ctx context.Context, sess *session.Session, raw []byte, displayName string) (*BindResult, error) {
	storedPath, duplicate, err := RegisterUpload(raw, displayName, m.cfg.HoldingDir)
	if err != nil {
		return nil, err
	}

	slug := ResolveSlug(sess, displayName, storedPath, headerSample(raw))

	root, err := m.EnsureWorkspace(ctx, sess, slug)
	if err != nil {
		return nil, err
	}

	datasetPath := filepath.Join(root, CategoryUpload.Dir(), filepath.Base(storedPath))
	if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
		if err := os.WriteFile(datasetPath, raw, 0644); err != nil {
			return nil, stageErr(StageWorkspace, fmt.Errorf("copy upload into workspace: %w", err))
		}
	}

	sess.SetState(session.KeyDefaultDatasetPath, []byte(datasetPath))

	runID, _ := sess.GetState(session.KeyRunID)
	return &BindResult{
		Slug:        slug,
		RunID:       string(runID),
		RootPath:    root,
		StoredPath:  storedPath,
		DatasetPath: datasetPath,
		Duplicate:   duplicate,
	}, nil
}

// headerSample extracts a column-header sample from the first line of a
// textual upload. Binary or headerless content yields nil.
func headerSample(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	sample := raw
	if len(sample) > headerSampleLimit {
		sample = sample[:headerSampleLimit]
	}
	if idx := bytes.IndexByte(sample, '\n'); idx >= 0 {
		sample = sample[:idx]
	}
	line := strings.TrimRight(string(sample), "\r")
	if line == "" || !utf8.ValidString(line) || strings.ContainsRune(line, 0) {
		return nil
	}

	sep := ","
	for _, candidate := range []string{",", ";", "\t"} {
		if strings.Count(line, candidate) > strings.Count(line, sep) {
			sep = candidate
		}
	}
	fields := strings.Split(line, sep)
	headers := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), `"'`)
		if f != "" {
			headers = append(headers, f)
		}
	}
	return headers
}
