//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package dataspace

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-dataspace-go/artifact"
	"trpc.group/trpc-go/trpc-dataspace-go/log"
	"trpc.group/trpc-go/trpc-dataspace-go/tool"
	"trpc.group/trpc-go/trpc-dataspace-go/tool/function"
	"trpc.group/trpc-go/trpc-dataspace-go/workspace"
	"trpc.group/trpc-go/trpc-dataspace-go/workspace/router"
)

// resultItem is one artifact candidate in a route and persist request.
type resultItem struct {
	Name          string `json:"name,omitempty" jsonschema:"description=Logical artifact name, e.g. 'cleaned.csv'. Optional; unnamed items are named after the tool."`
	SourcePath    string `json:"source_path,omitempty" jsonschema:"description=Path of a file the tool already wrote. Wins over inline content."`
	Content       string `json:"content,omitempty" jsonschema:"description=Inline textual artifact content."`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"description=Base64-encoded artifact content, for binary artifacts."`
	Category      string `json:"category,omitempty" jsonschema:"description=Optional explicit category, e.g. 'plot' or 'model'. Defaults to extension-based classification."`
	Metric        bool   `json:"metric,omitempty" jsonschema:"description=Marks JSON content as evaluation metrics."`
}

// routePersistRequest represents the input for the route and persist operation.
type routePersistRequest struct {
	UserID    string       `json:"user_id" jsonschema:"description=The identifier of the calling user."`
	SessionID string       `json:"session_id" jsonschema:"description=The conversation's session identifier."`
	ToolName  string       `json:"tool_name" jsonschema:"description=The name of the tool that produced the items."`
	Items     []resultItem `json:"items,omitempty" jsonschema:"description=The artifacts to route. An empty list is a no-op."`
}

// routedArtifact describes one persisted artifact in the response.
type routedArtifact struct {
	LogicalName   string `json:"logical_name"`
	Category      string `json:"category"`
	Path          string `json:"path"`
	MimeType      string `json:"mime_type"`
	MirrorRef     string `json:"mirror_ref,omitempty"`
	MirrorVersion int    `json:"mirror_version"`
	Mirrored      bool   `json:"mirrored"`
}

// routePersistResponse represents the output from the route and persist operation.
type routePersistResponse struct {
	RootPath  string           `json:"root_path,omitempty"`
	Artifacts []routedArtifact `json:"artifacts"`
	failure
}

// routePersist classifies the items, places each into its category folder
// of the session's run, mirrors them best-effort, and records them in the
// run manifest.
func (t *ToolSet) routePersist(ctx context.Context, req *routePersistRequest) (*routePersistResponse, error) {
	rsp := &routePersistResponse{Artifacts: []routedArtifact{}}

	sess, err := t.resolveSession(ctx, req.UserID, req.SessionID)
	if err != nil {
		rsp.describe(err)
		return rsp, err
	}

	root, err := t.manager.EnsureWorkspace(ctx, sess, "")
	if err != nil {
		rsp.describe(err)
		return rsp, err
	}
	rsp.RootPath = root

	payload, err := routerPayload(req.Items)
	if err != nil {
		err = &workspace.StageError{Stage: workspace.StageRouting, Err: err}
		rsp.describe(err)
		return rsp, err
	}

	routed, err := router.Route(root, payload, req.ToolName)
	if err != nil {
		err = &workspace.StageError{Stage: workspace.StageRouting, Err: err}
		rsp.describe(err)
		return rsp, err
	}

	info := artifact.SessionInfo{AppName: t.appName, UserID: req.UserID, SessionID: sess.ID}
	entries := make([]workspace.ManifestEntry, 0, len(routed))
	for _, a := range routed {
		ref, version, mirrored := t.persister.Mirror(ctx, info, a.LogicalName, a.Data, a.MimeType)
		rsp.Artifacts = append(rsp.Artifacts, routedArtifact{
			LogicalName:   a.LogicalName,
			Category:      string(a.Category),
			Path:          a.Path,
			MimeType:      a.MimeType,
			MirrorRef:     ref,
			MirrorVersion: version,
			Mirrored:      mirrored,
		})
		entries = append(entries, workspace.ManifestEntry{
			Name:      a.LogicalName,
			Category:  a.Category,
			Version:   version,
			Path:      a.Path,
			MirrorRef: ref,
			Mirrored:  mirrored,
			Tool:      req.ToolName,
			CreatedAt: time.Now(),
		})
	}
	if err := workspace.AppendManifest(root, entries...); err != nil {
		// The artifacts are already in place; a manifest miss only costs
		// restart recovery for this batch.
		log.Warnf("dataspace: append manifest for %s: %v", root, err)
	}

	rsp.Message = fmt.Sprintf("Routed %d artifact(s) into %s", len(rsp.Artifacts), root)
	return rsp, nil
}

// routerPayload converts request items into a router payload.
func routerPayload(items []resultItem) (*router.Payload, error) {
	payload := &router.Payload{Items: make([]router.Item, 0, len(items))}
	for i, item := range items {
		var data []byte
		if item.ContentBase64 != "" {
			raw, err := base64.StdEncoding.DecodeString(item.ContentBase64)
			if err != nil {
				return nil, fmt.Errorf("item %d: decode content_base64: %w", i, err)
			}
			data = raw
		} else if item.Content != "" {
			data = []byte(item.Content)
		}
		payload.Items = append(payload.Items, router.Item{
			Name:       item.Name,
			SourcePath: item.SourcePath,
			Data:       data,
			Category:   workspace.Category(item.Category),
			Metric:     item.Metric,
		})
	}
	return payload, nil
}

// routePersistTool returns a callable tool for routing and persisting artifacts.
func (t *ToolSet) routePersistTool() tool.CallableTool {
	return function.NewFunctionTool(
		t.routePersist,
		function.WithName("route_and_persist"),
		function.WithDescription("Routes tool result artifacts into the session's workspace run. Each item is "+
			"classified into a category folder (plots, models, data, reports, results, metrics, indexes, logs) "+
			"by its explicit 'category', its 'metric' flag, or its file extension, then persisted locally and "+
			"mirrored to the configured artifact backend when available. Items reference a produced file via "+
			"'source_path' or carry inline 'content'/'content_base64'. Returns the routed paths and mirror "+
			"references."),
	)
}
