//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package dataspace exposes the workspace layer to agents as callable
// tools. It provides capabilities for binding uploaded datasets, ensuring
// workspace run directories, and routing tool results into categorized,
// persisted artifacts.
//
// The tools never construct workspace paths by hand; every filesystem
// decision goes through the workspace manager so all collaborators of a
// session agree on the same run directory.
package dataspace

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-dataspace-go/artifact"
	"trpc.group/trpc-go/trpc-dataspace-go/session"
	"trpc.group/trpc-go/trpc-dataspace-go/session/inmemory"
	"trpc.group/trpc-go/trpc-dataspace-go/tool"
	"trpc.group/trpc-go/trpc-dataspace-go/workspace"
	"trpc.group/trpc-go/trpc-dataspace-go/workspace/persist"
)

// defaultAppName scopes sessions created by the tool set when the host
// application does not set its own name.
const defaultAppName = "dataspace"

// Option is a functional option for configuring the dataspace tool set.
type Option func(*ToolSet)

// WithAppName sets the application name sessions are scoped by.
func WithAppName(appName string) Option {
	return func(t *ToolSet) {
		t.appName = appName
	}
}

// WithConfig sets the workspace configuration, default is the
// environment-derived configuration with built-in fallbacks.
func WithConfig(cfg workspace.Config) Option {
	return func(t *ToolSet) {
		t.cfg = cfg
	}
}

// WithSessionService sets the session backend, default is in-memory.
func WithSessionService(service session.Service) Option {
	return func(t *ToolSet) {
		t.sessions = service
	}
}

// WithMirror sets the optional artifact mirror backend. Without it every
// persisted artifact reports mirrored=false.
func WithMirror(service artifact.Service) Option {
	return func(t *ToolSet) {
		t.mirror = service
	}
}

// WithBindUploadEnabled enables or disables the bind upload tool, default is true.
func WithBindUploadEnabled(e bool) Option {
	return func(t *ToolSet) {
		t.bindUploadEnabled = e
	}
}

// WithEnsureWorkspaceEnabled enables or disables the ensure workspace tool, default is true.
func WithEnsureWorkspaceEnabled(e bool) Option {
	return func(t *ToolSet) {
		t.ensureWorkspaceEnabled = e
	}
}

// WithRoutePersistEnabled enables or disables the route and persist tool, default is true.
func WithRoutePersistEnabled(e bool) Option {
	return func(t *ToolSet) {
		t.routePersistEnabled = e
	}
}

// ToolSet implements the tool.Set interface for workspace operations.
type ToolSet struct {
	appName                string
	cfg                    workspace.Config
	sessions               session.Service
	mirror                 artifact.Service
	manager                *workspace.Manager
	persister              *persist.Persister
	bindUploadEnabled      bool
	ensureWorkspaceEnabled bool
	routePersistEnabled    bool
	tools                  []tool.CallableTool
}

var _ tool.Set = (*ToolSet)(nil)

// NewToolSet creates a new dataspace tool set with the provided options.
func NewToolSet(opts ...Option) (*ToolSet, error) {
	toolSet := &ToolSet{
		appName:                defaultAppName,
		bindUploadEnabled:      true,
		ensureWorkspaceEnabled: true,
		routePersistEnabled:    true,
	}
	for _, opt := range opts {
		opt(toolSet)
	}

	if toolSet.sessions == nil {
		toolSet.sessions = inmemory.NewSessionService()
	}

	manager, err := workspace.NewManager(toolSet.cfg)
	if err != nil {
		return nil, fmt.Errorf("dataspace: create workspace manager: %w", err)
	}
	toolSet.manager = manager

	persister, err := persist.New(
		persist.WithMirror(toolSet.mirror),
		persist.WithMirrorTimeout(manager.Config().MirrorTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("dataspace: create persister: %w", err)
	}
	toolSet.persister = persister

	var tools []tool.CallableTool
	if toolSet.bindUploadEnabled {
		tools = append(tools, toolSet.bindUploadTool())
	}
	if toolSet.ensureWorkspaceEnabled {
		tools = append(tools, toolSet.ensureWorkspaceTool())
	}
	if toolSet.routePersistEnabled {
		tools = append(tools, toolSet.routePersistTool())
	}
	toolSet.tools = tools
	return toolSet, nil
}

// Tools implements the tool.Set interface.
func (t *ToolSet) Tools() []tool.CallableTool {
	return t.tools
}

// Close releases the tool set's persister.
func (t *ToolSet) Close() error {
	t.persister.Close()
	return nil
}

// Manager returns the underlying workspace manager, for host applications
// that want direct access next to the tools.
func (t *ToolSet) Manager() *workspace.Manager {
	return t.manager
}

// resolveSession returns the live session for the caller, creating it on
// first use. The session is the coordination point: every tool call for
// one conversation must resolve to the same state bag.
func (t *ToolSet) resolveSession(ctx context.Context, userID, sessionID string) (*session.Session, error) {
	key := session.Key{AppName: t.appName, UserID: userID, SessionID: sessionID}
	if err := key.CheckSessionKey(); err != nil {
		return nil, &workspace.StageError{Stage: workspace.StageIdentity, Err: err}
	}
	sess, err := t.sessions.GetSession(ctx, key)
	if err != nil {
		return nil, &workspace.StageError{Stage: workspace.StageIdentity, Err: err}
	}
	if sess != nil {
		return sess, nil
	}
	sess, err = t.sessions.CreateSession(ctx, key, nil)
	if err != nil {
		return nil, &workspace.StageError{Stage: workspace.StageIdentity, Err: err}
	}
	return sess, nil
}

// failure describes a stage failure in a tool response.
type failure struct {
	// Stage is the pipeline stage the call failed in, empty on success.
	Stage string `json:"stage,omitempty"`
	// Message is the user-facing outcome description.
	Message string `json:"message,omitempty"`
	// Candidates lists nearby files when discovery missed.
	Candidates []string `json:"candidates,omitempty"`
}

// describe fills the failure fields from err.
func (f *failure) describe(err error) {
	var stageError *workspace.StageError
	if errors.As(err, &stageError) {
		f.Stage = string(stageError.Stage)
		f.Candidates = stageError.Candidates
		f.Message = fmt.Sprintf("Error: %v", stageError.Err)
		if stageError.Hint != "" {
			f.Message += " (" + stageError.Hint + ")"
		}
		return
	}
	f.Message = fmt.Sprintf("Error: %v", err)
}
