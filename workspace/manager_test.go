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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-dataspace-go/session"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	base := t.TempDir()
	m, err := NewManager(Config{
		Root:       filepath.Join(base, "workspaces"),
		HoldingDir: filepath.Join(base, "uploads"),
	})
	require.NoError(t, err)
	return m
}

func TestEnsureWorkspace_CreatesCategoryFolders(t *testing.T) {
	m := newTestManager(t)
	sess := newTestSession()

	root, err := m.EnsureWorkspace(context.Background(), sess, "tips")
	require.NoError(t, err)

	for _, category := range Categories() {
		assert.DirExists(t, filepath.Join(root, category.Dir()))
	}

	paths, ok := m.WorkspacePaths(sess)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "plots"), paths[CategoryPlot])
}

func TestEnsureWorkspace_Idempotent(t *testing.T) {
	m := newTestManager(t)
	sess := newTestSession()
	ctx := context.Background()

	first, err := m.EnsureWorkspace(ctx, sess, "tips")
	require.NoError(t, err)
	second, err := m.EnsureWorkspace(ctx, sess, "tips")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnsureWorkspace_SharedRunIDAcrossDatasets(t *testing.T) {
	m := newTestManager(t)
	sess := newTestSession()
	ctx := context.Background()

	tipsRoot, err := m.EnsureWorkspace(ctx, sess, "tips")
	require.NoError(t, err)
	salesRoot, err := m.EnsureWorkspace(ctx, sess, "sales")
	require.NoError(t, err)

	// Same session, same run token, sibling dataset directories.
	assert.NotEqual(t, tipsRoot, salesRoot)
	assert.Equal(t, filepath.Base(tipsRoot), filepath.Base(salesRoot))
}

func TestEnsureWorkspace_FreshSessionFreshRun(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	clock := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	first := newTestSession()
	firstRoot, err := m.EnsureWorkspace(ctx, first, "tips")
	require.NoError(t, err)

	clock = clock.Add(time.Second)
	second := newTestSession()
	second.ID = "s2"
	secondRoot, err := m.EnsureWorkspace(ctx, second, "tips")
	require.NoError(t, err)

	assert.NotEqual(t, firstRoot, secondRoot)
	assert.Equal(t, filepath.Dir(firstRoot), filepath.Dir(secondRoot))
}

func TestEnsureWorkspace_EmptySlugUsesSessionBinding(t *testing.T) {
	m := newTestManager(t)
	sess := newTestSession()
	sess.SetState(session.KeyDatasetSlug, []byte("tips"))

	root, err := m.EnsureWorkspace(context.Background(), sess, "")
	require.NoError(t, err)
	assert.Contains(t, root, "tips")
}

func TestEnsureWorkspace_EmptySlugNoBindingUsesGeneric(t *testing.T) {
	m := newTestManager(t)

	root, err := m.EnsureWorkspace(context.Background(), newTestSession(), "")
	require.NoError(t, err)
	assert.Contains(t, root, GenericSlug)
}

func TestBindUpload_EndToEnd(t *testing.T) {
	m := newTestManager(t)
	sess := newTestSession()
	raw := []byte("total_bill,tip,sex\n16.99,1.01,Female\n")

	result, err := m.BindUpload(context.Background(), sess, raw, "tips.csv")
	require.NoError(t, err)

	assert.Equal(t, "tips", result.Slug)
	assert.False(t, result.Duplicate)
	assert.NotEmpty(t, result.RunID)
	assert.FileExists(t, result.StoredPath)
	assert.FileExists(t, result.DatasetPath)
	assert.Equal(t, filepath.Join(result.RootPath, "uploads"), filepath.Dir(result.DatasetPath))

	bound, ok := sess.GetState(session.KeyDefaultDatasetPath)
	require.True(t, ok)
	assert.Equal(t, result.DatasetPath, string(bound))
}

func TestBindUpload_DuplicateKeepsBinding(t *testing.T) {
	m := newTestManager(t)
	sess := newTestSession()
	raw := []byte("total_bill,tip\n16.99,1.01\n")
	ctx := context.Background()

	first, err := m.BindUpload(ctx, sess, raw, "tips.csv")
	require.NoError(t, err)

	second, err := m.BindUpload(ctx, sess, raw, "tips.csv")
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Slug, second.Slug)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.DatasetPath, second.DatasetPath)
}

func TestBindUpload_GenericNameSlugsFromHeaders(t *testing.T) {
	m := newTestManager(t)
	sess := newTestSession()
	raw := []byte("total_bill,tip,sex\n16.99,1.01,Female\n")

	result, err := m.BindUpload(context.Background(), sess, raw, "data.csv")
	require.NoError(t, err)
	assert.Equal(t, "total_bill_tip_sex", result.Slug)
}

func TestHeaderSample(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, headerSample([]byte("a,b,c\n1,2,3\n")))
	assert.Equal(t, []string{"a", "b"}, headerSample([]byte("a;b\n1;2\n")))
	assert.Equal(t, []string{"col 1", "col 2"}, headerSample([]byte("\"col 1\"\t\"col 2\"\n")))
	assert.Nil(t, headerSample(nil))
	assert.Nil(t, headerSample([]byte{0x89, 'P', 'N', 'G', 0x00, '\n'}))
}

func TestNewManager_CreatesDirs(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "ws")
	holding := filepath.Join(base, "hold")

	_, err := NewManager(Config{Root: root, HoldingDir: holding})
	require.NoError(t, err)
	assert.DirExists(t, root)
	assert.DirExists(t, holding)
}

func TestNewManager_DefaultsApplied(t *testing.T) {
	base := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(base))
	defer func() { _ = os.Chdir(cwd) }()

	m, err := NewManager(Config{})
	require.NoError(t, err)
	assert.Equal(t, "workspaces", m.Config().Root)
	assert.Equal(t, "uploads", m.Config().HoldingDir)
	assert.Positive(t, m.Config().MirrorTimeout)
}
