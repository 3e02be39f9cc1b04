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

	"trpc.group/trpc-go/trpc-dataspace-go/tool"
	"trpc.group/trpc-go/trpc-dataspace-go/tool/function"
	"trpc.group/trpc-go/trpc-dataspace-go/workspace"
)

// bindUploadRequest represents the input for the bind upload operation.
type bindUploadRequest struct {
	UserID        string `json:"user_id" jsonschema:"description=The identifier of the uploading user."`
	SessionID     string `json:"session_id" jsonschema:"description=The conversation's session identifier."`
	FileName      string `json:"file_name" jsonschema:"description=The upload's display name, e.g. 'tips.csv'."`
	Content       string `json:"content,omitempty" jsonschema:"description=Inline textual file content. Use content_base64 for binary content."`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"description=Base64-encoded file content, for binary uploads."`
	Rebind        bool   `json:"rebind,omitempty" jsonschema:"description=Clear the session's existing dataset binding before binding this upload."`
}

// bindUploadResponse represents the output from the bind upload operation.
type bindUploadResponse struct {
	Slug        string `json:"slug,omitempty"`
	RunID       string `json:"run_id,omitempty"`
	RootPath    string `json:"root_path,omitempty"`
	DatasetPath string `json:"dataset_path,omitempty"`
	Duplicate   bool   `json:"duplicate,omitempty"`
	failure
}

// bindUpload stores the upload, resolves the dataset identity, and binds
// the session to its workspace run.
func (t *ToolSet) bindUpload(ctx context.Context, req *bindUploadRequest) (*bindUploadResponse, error) {
	rsp := &bindUploadResponse{}

	raw, err := uploadContent(req)
	if err != nil {
		err = &workspace.StageError{Stage: workspace.StageUpload, Err: err}
		rsp.describe(err)
		return rsp, err
	}

	sess, err := t.resolveSession(ctx, req.UserID, req.SessionID)
	if err != nil {
		rsp.describe(err)
		return rsp, err
	}
	if req.Rebind {
		sess.ResetBinding()
	}

	result, err := t.manager.BindUpload(ctx, sess, raw, req.FileName)
	if err != nil {
		rsp.describe(err)
		return rsp, err
	}

	rsp.Slug = result.Slug
	rsp.RunID = result.RunID
	rsp.RootPath = result.RootPath
	rsp.DatasetPath = result.DatasetPath
	rsp.Duplicate = result.Duplicate
	if result.Duplicate {
		rsp.Message = fmt.Sprintf("Already uploaded: %s is bound as dataset '%s'", req.FileName, result.Slug)
	} else {
		rsp.Message = fmt.Sprintf("Bound %s as dataset '%s' in run %s", req.FileName, result.Slug, result.RunID)
	}
	return rsp, nil
}

// uploadContent decodes the request's inline content. The base64 field
// wins when both are set, since it is the only lossless channel.
func uploadContent(req *bindUploadRequest) ([]byte, error) {
	if req.ContentBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(req.ContentBase64)
		if err != nil {
			return nil, fmt.Errorf("decode content_base64: %w", err)
		}
		return raw, nil
	}
	if req.Content != "" {
		return []byte(req.Content), nil
	}
	return nil, fmt.Errorf("upload content is empty")
}

// bindUploadTool returns a callable tool for binding uploads.
func (t *ToolSet) bindUploadTool() tool.CallableTool {
	return function.NewFunctionTool(
		t.bindUpload,
		function.WithName("bind_upload"),
		function.WithDescription("Registers an uploaded file and binds it to the session's dataset workspace. "+
			"Identical content uploaded twice is detected and returns the existing binding with 'duplicate' set. "+
			"Provide textual content in 'content' or binary content in 'content_base64'. "+
			"Set 'rebind' to true to replace the session's current dataset binding with this upload. "+
			"Returns the dataset slug, the run identifier, and the bound dataset path."),
	)
}
