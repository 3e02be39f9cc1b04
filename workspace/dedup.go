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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-dataspace-go/log"
)

// hashIndexName is the sidecar file recording content hashes of stored
// uploads inside a holding directory.
const hashIndexName = ".hashes.json"

// UploadRecord describes one stored upload in the holding area.
type UploadRecord struct {
	ContentHash      string    `json:"content_hash"`
	OriginalFilename string    `json:"original_filename"`
	StoredPath       string    `json:"stored_path"`
	FirstSeenAt      time.Time `json:"first_seen_at"`
}

// RegisterUpload stores raw in the holding directory unless byte-identical
// content is already present there. It returns the stored path and whether
// the upload was a duplicate.
//
// The scan is exact-byte over a strong content hash: near-duplicate
// content is never merged. The holding directory is shared by every
// session configured with it, so deduplication is global across those
// sessions. The scan never recurses.
func RegisterUpload(raw []byte, originalName, holdingDir string) (string, bool, error) {
	if err := os.MkdirAll(holdingDir, 0755); err != nil {
		return "", false, stageErr(StageUpload, fmt.Errorf("create holding dir %s: %w", holdingDir, err))
	}

	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])

	index := loadHashIndex(holdingDir)
	refreshHashIndex(holdingDir, index)

	if rec, ok := index[hash]; ok {
		if _, err := os.Stat(rec.StoredPath); err == nil {
			return rec.StoredPath, true, nil
		}
		// Stale record: the stored file was removed behind our back.
		delete(index, hash)
	}

	storedPath := filepath.Join(holdingDir, storedName(holdingDir, originalName))
	if err := os.WriteFile(storedPath, raw, 0644); err != nil {
		return "", false, stageErr(StageUpload, fmt.Errorf("store upload %s: %w", originalName, err))
	}

	index[hash] = UploadRecord{
		ContentHash:      hash,
		OriginalFilename: originalName,
		StoredPath:       storedPath,
		FirstSeenAt:      time.Now(),
	}
	saveHashIndex(holdingDir, index)

	return storedPath, false, nil
}

// storedName builds a unique, timestamp-qualified name for a new upload.
// The collision counter goes before the extension so the stored file keeps
// classifying and slugging like the original.
func storedName(holdingDir, originalName string) string {
	base := sanitizeFileName(originalName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := strconv.FormatInt(time.Now().Unix(), 10) + "_" + stem
	candidate := name + ext
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(holdingDir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = name + "." + strconv.Itoa(i) + ext
	}
}

// sanitizeFileName reduces a user-supplied filename to a safe basename.
func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "upload"
	}
	return out
}

// loadHashIndex reads the sidecar hash index. A missing or corrupt index
// is treated as empty; refreshHashIndex rebuilds it from the files.
func loadHashIndex(holdingDir string) map[string]UploadRecord {
	index := make(map[string]UploadRecord)
	raw, err := os.ReadFile(filepath.Join(holdingDir, hashIndexName))
	if err != nil {
		return index
	}
	if err := json.Unmarshal(raw, &index); err != nil {
		log.Warnf("upload dedup: corrupt hash index in %s, rebuilding: %v", holdingDir, err)
		return make(map[string]UploadRecord)
	}
	return index
}

// refreshHashIndex hashes any file in the holding directory that the index
// does not cover yet. The walk is non-recursive and skips dotfiles.
func refreshHashIndex(holdingDir string, index map[string]UploadRecord) {
	known := make(map[string]bool, len(index))
	for _, rec := range index {
		known[rec.StoredPath] = true
	}

	entries, err := os.ReadDir(holdingDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(holdingDir, entry.Name())
		if known[path] {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		sum := sha256.Sum256(raw)
		hash := hex.EncodeToString(sum[:])
		if _, ok := index[hash]; ok {
			continue
		}
		info, err := entry.Info()
		firstSeen := time.Now()
		if err == nil {
			firstSeen = info.ModTime()
		}
		index[hash] = UploadRecord{
			ContentHash:      hash,
			OriginalFilename: entry.Name(),
			StoredPath:       path,
			FirstSeenAt:      firstSeen,
		}
	}
}

// saveHashIndex persists the sidecar index. Failures are logged, not
// fatal: the index is a cache that refreshHashIndex can rebuild.
func saveHashIndex(holdingDir string, index map[string]UploadRecord) {
	raw, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(holdingDir, hashIndexName), raw, 0644); err != nil {
		log.Warnf("upload dedup: write hash index in %s: %v", holdingDir, err)
	}
}
