//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory session service implementation.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-dataspace-go/session"
)

var _ session.Service = (*SessionService)(nil)

// appSessions holds the sessions and scoped state of one app.
type appSessions struct {
	mu        sync.RWMutex
	sessions  map[string]map[string]*session.Session
	userState map[string]session.StateMap
	appState  session.StateMap
}

// newAppSessions creates a new in-memory sessions map for one app.
func newAppSessions() *appSessions {
	return &appSessions{
		sessions:  make(map[string]map[string]*session.Session),
		userState: make(map[string]session.StateMap),
		appState:  make(session.StateMap),
	}
}

// SessionService provides an in-memory implementation of session.Service.
type SessionService struct {
	mu   sync.RWMutex
	apps map[string]*appSessions
}

// NewSessionService creates a new in-memory session service.
func NewSessionService() *SessionService {
	return &SessionService{
		apps: make(map[string]*appSessions),
	}
}

func (s *SessionService) getAppSessions(appName string) (*appSessions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[appName]
	return app, ok
}

func (s *SessionService) getOrCreateAppSessions(appName string) *appSessions {
	s.mu.RLock()
	app, ok := s.apps[appName]
	if ok {
		s.mu.RUnlock()
		return app
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok = s.apps[appName]
	if ok {
		return app
	}
	app = newAppSessions()
	s.apps[appName] = app
	return app
}

// CreateSession creates a new session with the given parameters.
func (s *SessionService) CreateSession(
	ctx context.Context,
	key session.Key,
	state session.StateMap,
	opts ...session.Option,
) (*session.Session, error) {
	if err := key.CheckUserKey(); err != nil {
		return nil, err
	}

	app := s.getOrCreateAppSessions(key.AppName)

	// Generate a session ID if not provided.
	if key.SessionID == "" {
		key.SessionID = uuid.New().String()
	}

	now := time.Now()
	sess := &session.Session{
		ID:        key.SessionID,
		AppName:   key.AppName,
		UserID:    key.UserID,
		State:     make(session.StateMap),
		UpdatedAt: now,
		CreatedAt: now,
	}
	for k, v := range state {
		// Temp-scoped state is never stored.
		if strings.HasPrefix(k, session.StateTempPrefix) {
			continue
		}
		sess.State[k] = cloneBytes(v)
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.sessions[key.UserID] == nil {
		app.sessions[key.UserID] = make(map[string]*session.Session)
	}
	app.sessions[key.UserID][key.SessionID] = sess

	return sess, nil
}

// GetSession gets a session. The live session object is returned: the
// session state bag is owned by exactly one conversation and is mutated
// in place by the workspace components, so no copy is taken here.
// Returns nil if not found.
func (s *SessionService) GetSession(
	ctx context.Context,
	key session.Key,
	opts ...session.Option,
) (*session.Session, error) {
	if err := key.CheckSessionKey(); err != nil {
		return nil, err
	}
	app, ok := s.getAppSessions(key.AppName)
	if !ok {
		return nil, nil
	}

	app.mu.RLock()
	defer app.mu.RUnlock()
	sess, ok := app.sessions[key.UserID][key.SessionID]
	if !ok {
		return nil, nil
	}
	return sess, nil
}

// ListSessions lists all sessions of a user.
func (s *SessionService) ListSessions(
	ctx context.Context,
	userKey session.UserKey,
	opts ...session.Option,
) ([]*session.Session, error) {
	if err := userKey.CheckUserKey(); err != nil {
		return nil, err
	}

	options := &session.Options{}
	for _, opt := range opts {
		opt(options)
	}

	app, ok := s.getAppSessions(userKey.AppName)
	if !ok {
		return []*session.Session{}, nil
	}

	app.mu.RLock()
	defer app.mu.RUnlock()
	sessions := make([]*session.Session, 0, len(app.sessions[userKey.UserID]))
	for _, sess := range app.sessions[userKey.UserID] {
		if !options.UpdatedAfter.IsZero() && !sess.UpdatedAt.After(options.UpdatedAfter) {
			continue
		}
		sessions = append(sessions, s.mergedCopy(app, sess))
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteSession deletes a session.
func (s *SessionService) DeleteSession(
	ctx context.Context,
	key session.Key,
	opts ...session.Option,
) error {
	if err := key.CheckSessionKey(); err != nil {
		return err
	}
	app, ok := s.getAppSessions(key.AppName)
	if !ok {
		return nil
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	delete(app.sessions[key.UserID], key.SessionID)
	if len(app.sessions[key.UserID]) == 0 {
		delete(app.sessions, key.UserID)
	}
	return nil
}

// UpdateAppState updates the app state.
func (s *SessionService) UpdateAppState(ctx context.Context, appName string, state session.StateMap) error {
	if appName == "" {
		return session.ErrAppNameRequired
	}

	app := s.getOrCreateAppSessions(appName)

	app.mu.Lock()
	defer app.mu.Unlock()
	for k, v := range state {
		k = strings.TrimPrefix(k, session.StateAppPrefix)
		app.appState[k] = cloneBytes(v)
	}
	return nil
}

// DeleteAppState deletes an app state key.
func (s *SessionService) DeleteAppState(ctx context.Context, appName string, key string) error {
	if appName == "" {
		return session.ErrAppNameRequired
	}
	app, ok := s.getAppSessions(appName)
	if !ok {
		return nil
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	delete(app.appState, strings.TrimPrefix(key, session.StateAppPrefix))
	return nil
}

// ListAppStates gets the app states.
func (s *SessionService) ListAppStates(ctx context.Context, appName string) (session.StateMap, error) {
	if appName == "" {
		return nil, session.ErrAppNameRequired
	}
	app, ok := s.getAppSessions(appName)
	if !ok {
		return make(session.StateMap), nil
	}

	app.mu.RLock()
	defer app.mu.RUnlock()
	return cloneStateMap(app.appState), nil
}

// UpdateUserState updates the user state. App- and temp-scoped keys are
// rejected so scopes cannot leak into each other.
func (s *SessionService) UpdateUserState(ctx context.Context, userKey session.UserKey, state session.StateMap) error {
	if err := userKey.CheckUserKey(); err != nil {
		return err
	}

	for k := range state {
		if strings.HasPrefix(k, session.StateAppPrefix) {
			return fmt.Errorf("in-memory session service update user state failed: %s is not allowed", k)
		}
		if strings.HasPrefix(k, session.StateTempPrefix) {
			return fmt.Errorf("in-memory session service update user state failed: %s is not allowed", k)
		}
	}

	app := s.getOrCreateAppSessions(userKey.AppName)

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.userState[userKey.UserID] == nil {
		app.userState[userKey.UserID] = make(session.StateMap)
	}
	for k, v := range state {
		k = strings.TrimPrefix(k, session.StateUserPrefix)
		app.userState[userKey.UserID][k] = cloneBytes(v)
	}
	return nil
}

// DeleteUserState deletes a user state key.
func (s *SessionService) DeleteUserState(ctx context.Context, userKey session.UserKey, key string) error {
	if err := userKey.CheckUserKey(); err != nil {
		return err
	}
	app, ok := s.getAppSessions(userKey.AppName)
	if !ok {
		return nil
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.userState[userKey.UserID] == nil {
		return nil
	}
	delete(app.userState[userKey.UserID], strings.TrimPrefix(key, session.StateUserPrefix))
	if len(app.userState[userKey.UserID]) == 0 {
		delete(app.userState, userKey.UserID)
	}
	return nil
}

// ListUserStates gets the user states.
func (s *SessionService) ListUserStates(ctx context.Context, userKey session.UserKey) (session.StateMap, error) {
	if err := userKey.CheckUserKey(); err != nil {
		return nil, err
	}
	app, ok := s.getAppSessions(userKey.AppName)
	if !ok {
		return make(session.StateMap), nil
	}

	app.mu.RLock()
	defer app.mu.RUnlock()
	userState, ok := app.userState[userKey.UserID]
	if !ok {
		return make(session.StateMap), nil
	}
	return cloneStateMap(userState), nil
}

// Close closes the service.
func (s *SessionService) Close() error {
	return nil
}

// mergedCopy builds a caller-owned snapshot of sess with app- and
// user-scoped state merged in under their prefixes. Used for listings,
// which must not alias the live session. Callers must hold app.mu.
func (s *SessionService) mergedCopy(app *appSessions, sess *session.Session) *session.Session {
	copied := &session.Session{
		ID:        sess.ID,
		AppName:   sess.AppName,
		UserID:    sess.UserID,
		State:     make(session.StateMap),
		UpdatedAt: sess.UpdatedAt,
		CreatedAt: sess.CreatedAt,
	}
	for k, v := range app.appState {
		copied.State[session.StateAppPrefix+k] = cloneBytes(v)
	}
	for k, v := range app.userState[sess.UserID] {
		copied.State[session.StateUserPrefix+k] = cloneBytes(v)
	}
	sess.StateMu.RLock()
	for k, v := range sess.State {
		copied.State[k] = cloneBytes(v)
	}
	sess.StateMu.RUnlock()
	return copied
}

func cloneBytes(v []byte) []byte {
	copied := make([]byte, len(v))
	copy(copied, v)
	return copied
}

func cloneStateMap(m session.StateMap) session.StateMap {
	copied := make(session.StateMap, len(m))
	for k, v := range m {
		copied[k] = cloneBytes(v)
	}
	return copied
}
