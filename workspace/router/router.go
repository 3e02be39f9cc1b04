//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package router classifies tool result payloads and places each artifact
// into the canonical category folder of the active workspace run.
//
// Producing tools emit a tagged payload of items instead of arbitrary
// result keys, so classification never has to guess at a result's shape:
// an item carries its content (inline bytes or a source file), an optional
// explicit category, and an optional metric flag.
package router

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"trpc.group/trpc-go/trpc-dataspace-go/log"
	"trpc.group/trpc-go/trpc-dataspace-go/workspace"
)

// Item is one candidate artifact in a tool's result payload.
type Item struct {
	// Name is the artifact's logical name. Optional: unnamed items get a
	// router-generated name qualified by the tool name and a timestamp.
	Name string `json:"name,omitempty"`
	// SourcePath points at a file the tool produced. Mutually exclusive
	// with Data; SourcePath wins when both are set.
	SourcePath string `json:"source_path,omitempty"`
	// Data is inline artifact content.
	Data []byte `json:"data,omitempty"`
	// Category optionally pins the classification, bypassing the
	// extension table.
	Category workspace.Category `json:"category,omitempty"`
	// Metric marks JSON content that should classify as a metric rather
	// than a generic result.
	Metric bool `json:"metric,omitempty"`
}

// Payload is a tool's tagged result payload.
type Payload struct {
	Items []Item `json:"items,omitempty"`
}

// Artifact is one routed byproduct, placed in its category folder.
type Artifact struct {
	// LogicalName is the artifact's name within the run.
	LogicalName string `json:"logical_name"`
	// Category is the resolved classification.
	Category workspace.Category `json:"category"`
	// Path is the absolute destination inside the run directory.
	Path string `json:"path"`
	// MimeType is the detected content type.
	MimeType string `json:"mime_type"`
	// Data is the routed content, retained for mirroring.
	Data []byte `json:"-"`
}

// Route classifies every item in the payload and copies it into
// root/<category>/, creating the category folder if needed. A payload with
// no items is not an error: the router returns an empty list. Items with
// neither inline data nor a readable source are skipped with a warning; a
// failed write into the workspace is fatal, since the run directory is the
// artifact's only durable home, and the artifacts routed before the
// failure are returned alongside the error.
func Route(root string, payload *Payload, toolName string) ([]Artifact, error) {
	if payload == nil || len(payload.Items) == 0 {
		return []Artifact{}, nil
	}

	artifacts := make([]Artifact, 0, len(payload.Items))
	for _, item := range payload.Items {
		data, err := itemData(item)
		if err != nil {
			log.Warnf("router: skipping %q from tool %s: %v", item.Name, toolName, err)
			continue
		}

		name := destinationName(item, toolName, data)
		category := classify(item, name, data)

		dest := filepath.Join(root, category.Dir(), name)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return artifacts, fmt.Errorf("route %q into %s: %w", name, category.Dir(), err)
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return artifacts, fmt.Errorf("route %q into %s: %w", name, category.Dir(), err)
		}

		artifacts = append(artifacts, Artifact{
			LogicalName: name,
			Category:    category,
			Path:        dest,
			MimeType:    detectMime(name, data),
			Data:        data,
		})
	}
	return artifacts, nil
}

// itemData resolves an item's content, preferring the source file.
func itemData(item Item) ([]byte, error) {
	if item.SourcePath != "" {
		data, err := os.ReadFile(item.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		return data, nil
	}
	if item.Data != nil {
		return item.Data, nil
	}
	return nil, fmt.Errorf("no content")
}

// destinationName picks the routed filename. Named items keep their
// (sanitized) name; unnamed items get <timestamp>_<tool_name><ext> so
// repeated invocations of one tool never collide within a run.
func destinationName(item Item, toolName string, data []byte) string {
	if item.Name != "" {
		return sanitizeName(item.Name)
	}
	if item.SourcePath != "" {
		return sanitizeName(filepath.Base(item.SourcePath))
	}

	ext := ""
	if detected := mimetype.Detect(data); detected != nil {
		ext = detected.Extension()
	}
	tool := sanitizeName(toolName)
	if tool == "" {
		tool = "tool"
	}
	return time.Now().Format("20060102_150405") + "_" + tool + ext
}

// classify resolves an item's category: an explicit category wins, then
// the metric flag for JSON content, then the extension table. Unknown
// extensions default to reports.
func classify(item Item, name string, data []byte) workspace.Category {
	if item.Category != "" && item.Category.Valid() {
		return item.Category
	}
	ext := strings.ToLower(filepath.Ext(name))
	if item.Metric && (ext == ".json" || ext == "") {
		return workspace.CategoryMetric
	}
	if ext == "" {
		if detected := mimetype.Detect(data); detected != nil {
			ext = detected.Extension()
		}
	}
	return workspace.CategoryForExtension(ext)
}

// detectMime resolves a content type from the filename extension, falling
// back to content sniffing for extensionless artifacts.
func detectMime(name string, data []byte) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(name)); mimeType != "" {
		return mimeType
	}
	if detected := mimetype.Detect(data); detected != nil {
		return detected.String()
	}
	return "application/octet-stream"
}

// sanitizeName reduces a logical name to a safe basename.
func sanitizeName(name string) string {
	base := filepath.Base(name)
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
	return strings.Trim(b.String(), "._")
}
