//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package session provides the scoped key-value session state that every
// workspace and artifact component coordinates through.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// StateMap is a map of state key-value pairs.
type StateMap map[string][]byte

var (
	// ErrAppNameRequired is the error for app name required.
	ErrAppNameRequired = errors.New("appName is required")
	// ErrUserIDRequired is the error for user id required.
	ErrUserIDRequired = errors.New("userID is required")
	// ErrSessionIDRequired is the error for session id required.
	ErrSessionIDRequired = errors.New("sessionID is required")
)

// Reserved state keys written by the workspace layer. Once set they stay
// stable for the rest of the session; writers must go through SetIfAbsent
// so an established binding is never clobbered. ResetBinding clears them
// when a new top-level upload explicitly rebinds the session.
const (
	// KeyDatasetSlug is the filesystem-safe dataset identifier.
	KeyDatasetSlug = "dataset_slug"
	// KeyRunID is the per-session workspace run token.
	KeyRunID = "run_id"
	// KeyWorkspacePaths is the JSON-encoded category-to-path map of the active run.
	KeyWorkspacePaths = "workspace_paths"
	// KeyDefaultDatasetPath is the absolute path of the currently bound dataset file.
	KeyDefaultDatasetPath = "default_dataset_path"
)

// Session is one conversation's state bag. All workspace components read
// and write coordination state through it instead of caching aside.
type Session struct {
	ID        string       `json:"id"`      // ID is the session id.
	AppName   string       `json:"appName"` // AppName is the app name.
	UserID    string       `json:"userID"`  // UserID is the user id.
	State     StateMap     `json:"state"`   // State is the session state.
	StateMu   sync.RWMutex `json:"-"`       // StateMu guards State.
	UpdatedAt time.Time    `json:"updatedAt"`
	CreatedAt time.Time    `json:"createdAt"`
}

// GetState returns the value stored under key.
func (sess *Session) GetState(key string) ([]byte, bool) {
	sess.StateMu.RLock()
	defer sess.StateMu.RUnlock()

	v, ok := sess.State[key]
	return v, ok
}

// SetState stores value under key, replacing any previous value.
func (sess *Session) SetState(key string, value []byte) {
	sess.StateMu.Lock()
	defer sess.StateMu.Unlock()

	if sess.State == nil {
		sess.State = make(StateMap)
	}
	sess.State[key] = value
	sess.UpdatedAt = time.Now()
}

// SetIfAbsent stores value under key only when no value exists yet.
// It returns the value that is stored after the call and whether this
// call performed the write. This is the check-then-set primitive that
// keeps run_id and dataset_slug stable across repeated tool calls.
func (sess *Session) SetIfAbsent(key string, value []byte) ([]byte, bool) {
	sess.StateMu.Lock()
	defer sess.StateMu.Unlock()

	if sess.State == nil {
		sess.State = make(StateMap)
	}
	if existing, ok := sess.State[key]; ok && len(existing) > 0 {
		return existing, false
	}
	sess.State[key] = value
	sess.UpdatedAt = time.Now()
	return value, true
}

// ResetBinding clears the reserved workspace-binding keys so a new
// top-level upload can establish a fresh dataset binding. Non-reserved
// state is left untouched.
func (sess *Session) ResetBinding() {
	sess.StateMu.Lock()
	defer sess.StateMu.Unlock()

	delete(sess.State, KeyDatasetSlug)
	delete(sess.State, KeyRunID)
	delete(sess.State, KeyWorkspacePaths)
	delete(sess.State, KeyDefaultDatasetPath)
	sess.UpdatedAt = time.Now()
}

// Options is the options for getting a session.
type Options struct {
	// UpdatedAfter filters sessions updated after the given time.
	UpdatedAfter time.Time
}

// Option is the option for a session.
type Option func(*Options)

// WithUpdatedAfter filters sessions updated after the given time.
func WithUpdatedAfter(t time.Time) Option {
	return func(o *Options) {
		o.UpdatedAfter = t
	}
}

// Service is the interface that all session services must implement.
type Service interface {
	// CreateSession creates a new session.
	CreateSession(ctx context.Context, key Key, state StateMap, options ...Option) (*Session, error)

	// GetSession gets a session.
	GetSession(ctx context.Context, key Key, options ...Option) (*Session, error)

	// ListSessions lists all sessions by user scope of session key.
	ListSessions(ctx context.Context, userKey UserKey, options ...Option) ([]*Session, error)

	// DeleteSession deletes a session.
	DeleteSession(ctx context.Context, key Key, options ...Option) error

	// UpdateAppState updates app-scoped state.
	UpdateAppState(ctx context.Context, appName string, state StateMap) error

	// ListAppStates lists app-scoped state.
	ListAppStates(ctx context.Context, appName string) (StateMap, error)

	// DeleteAppState deletes an app-scoped state key.
	DeleteAppState(ctx context.Context, appName string, key string) error

	// UpdateUserState updates user-scoped state.
	UpdateUserState(ctx context.Context, userKey UserKey, state StateMap) error

	// ListUserStates lists user-scoped state.
	ListUserStates(ctx context.Context, userKey UserKey) (StateMap, error)

	// DeleteUserState deletes a user-scoped state key.
	DeleteUserState(ctx context.Context, userKey UserKey, key string) error

	// Close closes the service.
	Close() error
}

// Key is the key for a session.
type Key struct {
	AppName   string // app name
	UserID    string // user id
	SessionID string // session id
}

// CheckSessionKey checks if a session key is valid.
func (s *Key) CheckSessionKey() error {
	return checkSessionKey(s.AppName, s.UserID, s.SessionID)
}

// CheckUserKey checks if a user key is valid.
func (s *Key) CheckUserKey() error {
	return checkUserKey(s.AppName, s.UserID)
}

// UserKey is the key for a user.
type UserKey struct {
	AppName string // app name
	UserID  string // user id
}

// CheckUserKey checks if a user key is valid.
func (s *UserKey) CheckUserKey() error {
	return checkUserKey(s.AppName, s.UserID)
}

func checkSessionKey(appName, userID, sessionID string) error {
	if appName == "" {
		return ErrAppNameRequired
	}
	if userID == "" {
		return ErrUserIDRequired
	}
	if sessionID == "" {
		return ErrSessionIDRequired
	}
	return nil
}

func checkUserKey(appName, userID string) error {
	if appName == "" {
		return ErrAppNameRequired
	}
	if userID == "" {
		return ErrUserIDRequired
	}
	return nil
}
