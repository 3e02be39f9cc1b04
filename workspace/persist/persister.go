//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package persist writes named artifact content to the durable local
// workspace and opportunistically mirrors it to an optional remote
// artifact service.
//
// The local write is the source of truth and the only step that can fail
// the caller. The mirror exists so a reader can fetch artifacts by logical
// name through an alternate channel; its absence is the common case and
// must never become a hard dependency. Mirror calls go through the
// concurrency bridge so a slow or wedged backend cannot stall a tool
// invocation beyond the configured bound.
package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trpc.group/trpc-go/trpc-dataspace-go/artifact"
	iartifact "trpc.group/trpc-go/trpc-dataspace-go/internal/artifact"
	"trpc.group/trpc-go/trpc-dataspace-go/internal/bridge"
	"trpc.group/trpc-go/trpc-dataspace-go/log"
	"trpc.group/trpc-go/trpc-dataspace-go/workspace"
)

// Result is the outcome of a persist operation. PrimaryPath is always set
// on success; the mirror fields report best-effort status only.
type Result struct {
	// PrimaryPath is the artifact's durable local location.
	PrimaryPath string `json:"primary_path"`
	// MirrorRef is the mirror backend's object reference, if mirrored.
	MirrorRef string `json:"mirror_ref,omitempty"`
	// MirrorVersion is the version the mirror assigned. Valid only when
	// Mirrored is true; versions start at zero.
	MirrorVersion int `json:"mirror_version"`
	// Mirrored reports whether the mirror write succeeded.
	Mirrored bool `json:"mirrored"`
}

// Options holds the configuration for a Persister.
type Options struct {
	mirror        artifact.Service
	mirrorTimeout time.Duration
}

// Option configures a Persister.
type Option func(*Options)

// WithMirror sets the optional mirror backend. Without it every save
// reports Mirrored=false, which is a fully supported configuration.
func WithMirror(service artifact.Service) Option {
	return func(o *Options) {
		o.mirror = service
	}
}

// WithMirrorTimeout bounds how long a save waits on the mirror backend.
func WithMirrorTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.mirrorTimeout = timeout
	}
}

// Persister writes artifacts locally first and mirrors them best-effort.
type Persister struct {
	mirror artifact.Service
	bridge *bridge.Bridge
}

// New creates a Persister with its own concurrency bridge.
func New(opts ...Option) (*Persister, error) {
	options := &Options{
		mirrorTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.mirrorTimeout <= 0 {
		options.mirrorTimeout = 10 * time.Second
	}

	b, err := bridge.New(bridge.WithTimeout(options.mirrorTimeout))
	if err != nil {
		return nil, fmt.Errorf("persister: create bridge: %w", err)
	}
	return &Persister{mirror: options.mirror, bridge: b}, nil
}

// Close releases the persister's bridge.
func (p *Persister) Close() {
	p.bridge.Close()
}

// Save writes data under the run directory's category folder for
// logicalName, then attempts to mirror it. The returned Result always
// carries the primary path; mirror failure is reported, never raised.
func (p *Persister) Save(ctx context.Context, root string, info artifact.SessionInfo, logicalName string, data []byte, mimeType string) (*Result, error) {
	category := workspace.CategoryForName(logicalName)
	primaryPath := filepath.Join(root, category.Dir(), logicalName)

	if err := writeFile(primaryPath, data); err != nil {
		log.Errorf("persist: primary write of %s failed, trying fallback: %v", logicalName, err)
		fallbackPath, fallbackErr := fallbackWrite(root, logicalName, data)
		if fallbackErr != nil {
			return nil, &workspace.StageError{
				Stage: workspace.StagePersistence,
				Err:   fmt.Errorf("primary write: %w (fallback also failed: %v)", err, fallbackErr),
			}
		}
		primaryPath = fallbackPath
	}

	result := &Result{PrimaryPath: primaryPath}
	result.MirrorRef, result.MirrorVersion, result.Mirrored = p.Mirror(ctx, info, logicalName, data, mimeType)
	return result, nil
}

// Mirror pushes data to the mirror backend, addressed by logical name and
// versioned by the backend. Every failure, including "no mirror
// configured", is reported through the mirrored flag instead of an error.
func (p *Persister) Mirror(ctx context.Context, info artifact.SessionInfo, logicalName string, data []byte, mimeType string) (ref string, version int, mirrored bool) {
	if p.mirror == nil {
		return "", 0, false
	}

	// The version travels over a buffered channel rather than a captured
	// variable: an abandoned worker may still be running when this
	// function returns.
	versionCh := make(chan int, 1)
	err := p.bridge.Run(ctx, func(ctx context.Context) error {
		v, err := p.mirror.SaveArtifact(ctx, info, logicalName, &artifact.Artifact{
			Data:     data,
			MimeType: mimeType,
			Name:     logicalName,
		})
		if err != nil {
			return err
		}
		versionCh <- v
		return nil
	})
	if err != nil {
		log.Errorf("persist: mirror write of %s failed (continuing with local copy only): %v", logicalName, err)
		return "", 0, false
	}

	version = <-versionCh
	return iartifact.BuildObjectName(info, logicalName, version), version, true
}

// writeFile writes data, creating the parent directory if needed.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// fallbackWrite is the last-resort writer: a plain write directly under
// the run root, bypassing the category layout.
func fallbackWrite(root, logicalName string, data []byte) (string, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(root, filepath.Base(logicalName))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
