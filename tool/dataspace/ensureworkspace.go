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
	"fmt"

	"trpc.group/trpc-go/trpc-dataspace-go/session"
	"trpc.group/trpc-go/trpc-dataspace-go/tool"
	"trpc.group/trpc-go/trpc-dataspace-go/tool/function"
	"trpc.group/trpc-go/trpc-dataspace-go/workspace"
)

// ensureWorkspaceRequest represents the input for the ensure workspace operation.
type ensureWorkspaceRequest struct {
	UserID      string `json:"user_id" jsonschema:"description=The identifier of the calling user."`
	SessionID   string `json:"session_id" jsonschema:"description=The conversation's session identifier."`
	DatasetSlug string `json:"dataset_slug,omitempty" jsonschema:"description=Optional dataset slug. Defaults to the session's bound dataset."`
}

// ensureWorkspaceResponse represents the output from the ensure workspace operation.
type ensureWorkspaceResponse struct {
	Slug     string            `json:"slug,omitempty"`
	RunID    string            `json:"run_id,omitempty"`
	RootPath string            `json:"root_path,omitempty"`
	Paths    map[string]string `json:"paths,omitempty"`
	failure
}

// ensureWorkspace resolves (and creates on first use) the session's run
// directory. Safe to call any number of times.
func (t *ToolSet) ensureWorkspace(ctx context.Context, req *ensureWorkspaceRequest) (*ensureWorkspaceResponse, error) {
	rsp := &ensureWorkspaceResponse{}

	sess, err := t.resolveSession(ctx, req.UserID, req.SessionID)
	if err != nil {
		rsp.describe(err)
		return rsp, err
	}

	root, err := t.manager.EnsureWorkspace(ctx, sess, req.DatasetSlug)
	if err != nil {
		rsp.describe(err)
		return rsp, err
	}

	rsp.Slug = req.DatasetSlug
	if rsp.Slug == "" {
		if slug, ok := sess.GetState(session.KeyDatasetSlug); ok {
			rsp.Slug = string(slug)
		}
	}
	if rsp.Slug == "" {
		rsp.Slug = workspace.GenericSlug
	}
	if runID, ok := sess.GetState(session.KeyRunID); ok {
		rsp.RunID = string(runID)
	}
	rsp.RootPath = root

	if paths, ok := t.manager.WorkspacePaths(sess); ok {
		rsp.Paths = make(map[string]string, len(paths))
		for category, dir := range paths {
			rsp.Paths[string(category)] = dir
		}
	}

	rsp.Message = fmt.Sprintf("Workspace ready at %s", root)
	return rsp, nil
}

// ensureWorkspaceTool returns a callable tool for ensuring workspaces.
func (t *ToolSet) ensureWorkspaceTool() tool.CallableTool {
	return function.NewFunctionTool(
		t.ensureWorkspace,
		function.WithName("ensure_workspace"),
		function.WithDescription("Resolves the session's workspace run directory, creating it and its category "+
			"subfolders on first use. Repeated calls within a session always return the same directory. "+
			"The optional 'dataset_slug' selects a dataset explicitly; without it the session's bound dataset "+
			"is used. Returns the run root and the per-category folder paths."),
	)
}
