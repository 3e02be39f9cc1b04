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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"trpc.group/trpc-go/trpc-dataspace-go/log"
	"trpc.group/trpc-go/trpc-dataspace-go/session"
)

// dataFilePatterns are the filename patterns discovery recognizes as
// datasets.
var dataFilePatterns = []string{
	"*.csv", "*.tsv", "*.parquet", "*.feather",
	"*.json", "*.xlsx", "*.xls",
}

// maxDiscoveryCandidates bounds how many nearby files a discovery miss
// reports back.
const maxDiscoveryCandidates = 10

// DiscoverDataset returns the dataset file the session should operate on.
//
// If the session has a bound dataset it is returned directly. Otherwise a
// fixed set of top-level locations is scanned, newest match first: the
// active run's uploads and data folders, then the holding area. The scan
// never recurses; files in nested subdirectories belong to other runs and
// must not be silently rebound. A miss is a structured condition carrying
// the nearby candidates, never a silent default.
func (m *Manager) DiscoverDataset(sess *session.Session) (string, error) {
	if raw, ok := sess.GetState(session.KeyDefaultDatasetPath); ok && len(raw) > 0 {
		path := string(raw)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		log.Warnf("discovery: bound dataset %s is gone, falling back to bounded scan", path)
	}

	searchDirs := m.searchDirs(sess)

	type candidate struct {
		path     string
		modTime  time.Time
		priority int
	}
	var matches []candidate
	var nearby []string

	for dirIdx, dir := range searchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if matchesDataPattern(entry.Name()) {
				info, err := entry.Info()
				modTime := time.Time{}
				if err == nil {
					modTime = info.ModTime()
				}
				matches = append(matches, candidate{path: path, modTime: modTime, priority: dirIdx})
			} else if len(nearby) < maxDiscoveryCandidates {
				nearby = append(nearby, path)
			}
		}
	}

	if len(matches) == 0 {
		return "", &StageError{
			Stage:      StageDiscovery,
			Err:        ErrNoDatasetBound,
			Hint:       "searched: " + strings.Join(searchDirs, ", "),
			Candidates: nearby,
		}
	}

	// Newest first; ties fall back to search-dir order, then to the path,
	// so the choice is stable and prefers the run's own folders.
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].modTime.Equal(matches[j].modTime) {
			return matches[i].modTime.After(matches[j].modTime)
		}
		if matches[i].priority != matches[j].priority {
			return matches[i].priority < matches[j].priority
		}
		return matches[i].path < matches[j].path
	})

	chosen := matches[0].path
	sess.SetState(session.KeyDefaultDatasetPath, []byte(chosen))
	log.Infof("discovery: bound session %s to %s", sess.ID, chosen)
	return chosen, nil
}

// searchDirs is the fixed, explicit candidate list for discovery.
func (m *Manager) searchDirs(sess *session.Session) []string {
	var dirs []string
	if paths, ok := m.WorkspacePaths(sess); ok {
		if dir, ok := paths[CategoryUpload]; ok {
			dirs = append(dirs, dir)
		}
		if dir, ok := paths[CategoryData]; ok {
			dirs = append(dirs, dir)
		}
	}
	return append(dirs, m.cfg.HoldingDir)
}

func matchesDataPattern(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range dataFilePatterns {
		if ok, err := doublestar.Match(pattern, lower); err == nil && ok {
			return true
		}
	}
	return false
}
