//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local-filesystem implementation of the artifact service.
//
// Each artifact version is stored as its own file:
//
//	{root}/{app_name}/{user_id}/{session_id}/{filename}/{version}
//
// with a sidecar "{version}.mimetype" recording the content type and a
// "latest" pointer file so the newest version is resolvable without
// enumerating history. This is the durable single-node backend that the
// dual-backend persister treats as the source of truth.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"trpc.group/trpc-go/trpc-dataspace-go/artifact"
	iartifact "trpc.group/trpc-go/trpc-dataspace-go/internal/artifact"
)

const (
	// defaultDirMode is the permission mode for created directories (rwxr-xr-x).
	defaultDirMode = os.FileMode(0755)
	// defaultFileMode is the permission mode for created files (rw-r--r--).
	defaultFileMode = os.FileMode(0644)
	// latestPointerName is the file holding the newest version number.
	latestPointerName = "latest"
	// mimeSuffix is the sidecar suffix carrying the content type.
	mimeSuffix = ".mimetype"
)

var _ artifact.Service = (*Service)(nil)

// Service is a local-filesystem implementation of the artifact service.
type Service struct {
	root string
	// mutex serializes version allocation; filesystem writes themselves
	// are additive and never rename or delete existing version files.
	mutex sync.Mutex
}

// NewService creates a local artifact service rooted at root.
func NewService(root string) (*Service, error) {
	if root == "" {
		return nil, fmt.Errorf("local artifact service: root directory is required")
	}
	if err := os.MkdirAll(root, defaultDirMode); err != nil {
		return nil, fmt.Errorf("local artifact service: create root %s: %w", root, err)
	}
	return &Service{root: root}, nil
}

// Root returns the root directory of the service.
func (s *Service) Root() string {
	return s.root
}

// SaveArtifact writes a new version file for the artifact and advances the
// latest pointer. Versions are strictly increasing, starting at 0.
func (s *Service) SaveArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, art *artifact.Artifact) (int, error) {
	if art == nil {
		return 0, fmt.Errorf("artifact is required")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	dir := filepath.Join(s.root, filepath.FromSlash(iartifact.BuildArtifactPath(sessionInfo, filename)))
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return 0, fmt.Errorf("create artifact directory: %w", err)
	}

	version := 0
	if latest, ok := s.readLatest(dir); ok {
		version = latest + 1
	} else if versions := scanVersions(dir); len(versions) > 0 {
		version = versions[len(versions)-1] + 1
	}

	versionPath := filepath.Join(dir, strconv.Itoa(version))
	if err := os.WriteFile(versionPath, art.Data, defaultFileMode); err != nil {
		return 0, fmt.Errorf("write artifact version %d: %w", version, err)
	}
	if art.MimeType != "" {
		if err := os.WriteFile(versionPath+mimeSuffix, []byte(art.MimeType), defaultFileMode); err != nil {
			return 0, fmt.Errorf("write artifact mime type: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, latestPointerName), []byte(strconv.Itoa(version)), defaultFileMode); err != nil {
		return 0, fmt.Errorf("write latest pointer: %w", err)
	}

	return version, nil
}

// LoadArtifact reads an artifact version. If version is nil the latest
// version is returned. Returns nil if the artifact does not exist.
func (s *Service) LoadArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, version *int) (*artifact.Artifact, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(iartifact.BuildArtifactPath(sessionInfo, filename)))

	var target int
	if version != nil {
		target = *version
	} else {
		latest, ok := s.readLatest(dir)
		if !ok {
			versions := scanVersions(dir)
			if len(versions) == 0 {
				return nil, nil
			}
			latest = versions[len(versions)-1]
		}
		target = latest
	}

	data, err := os.ReadFile(filepath.Join(dir, strconv.Itoa(target)))
	if os.IsNotExist(err) {
		if version != nil {
			return nil, fmt.Errorf("version %d does not exist", target)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact version %d: %w", target, err)
	}

	mimeType := "application/octet-stream"
	if raw, err := os.ReadFile(filepath.Join(dir, strconv.Itoa(target)+mimeSuffix)); err == nil && len(raw) > 0 {
		mimeType = string(raw)
	}

	return &artifact.Artifact{
		Data:     data,
		MimeType: mimeType,
		Name:     filename,
	}, nil
}

// ListArtifactKeys lists all the artifact filenames within a session,
// including the filenames in the session user's namespace.
func (s *Service) ListArtifactKeys(ctx context.Context, sessionInfo artifact.SessionInfo) ([]string, error) {
	var filenames []string
	for _, prefix := range []string{
		iartifact.BuildSessionPrefix(sessionInfo),
		iartifact.BuildUserNamespacePrefix(sessionInfo),
	} {
		dir := filepath.Join(s.root, filepath.FromSlash(strings.TrimSuffix(prefix, "/")))
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list artifacts under %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				filenames = append(filenames, entry.Name())
			}
		}
	}
	sort.Strings(filenames)
	return filenames, nil
}

// DeleteArtifact removes all versions of an artifact. Deleting a missing
// artifact is a no-op.
func (s *Service) DeleteArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) error {
	dir := filepath.Join(s.root, filepath.FromSlash(iartifact.BuildArtifactPath(sessionInfo, filename)))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete artifact %s: %w", filename, err)
	}
	return nil
}

// ListVersions lists all versions of an artifact in ascending order.
func (s *Service) ListVersions(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) ([]int, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(iartifact.BuildArtifactPath(sessionInfo, filename)))
	return scanVersions(dir), nil
}

// readLatest reads the latest pointer file. Returns false when the pointer
// is missing or unparseable; callers fall back to a directory scan.
func (s *Service) readLatest(dir string) (int, bool) {
	raw, err := os.ReadFile(filepath.Join(dir, latestPointerName))
	if err != nil {
		return 0, false
	}
	latest, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, false
	}
	return latest, true
}

// scanVersions returns the version numbers present in dir, ascending.
// Sidecar and pointer files are ignored.
func scanVersions(dir string) []int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	versions := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		v, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}
