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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUpload_StoresAndDedups(t *testing.T) {
	holding := t.TempDir()
	raw := []byte("total_bill,tip\n16.99,1.01\n")

	first, dup, err := RegisterUpload(raw, "tips.csv", holding)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.FileExists(t, first)

	stored, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)

	// Byte-identical content under a different name is a duplicate.
	second, dup, err := RegisterUpload(raw, "tips_copy.csv", holding)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, first, second)
}

func TestRegisterUpload_DifferentContentIsNotDup(t *testing.T) {
	holding := t.TempDir()

	first, dup, err := RegisterUpload([]byte("a,b\n1,2\n"), "one.csv", holding)
	require.NoError(t, err)
	assert.False(t, dup)

	second, dup, err := RegisterUpload([]byte("a,b\n3,4\n"), "two.csv", holding)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.NotEqual(t, first, second)
}

func TestRegisterUpload_RebuildsIndexFromFiles(t *testing.T) {
	holding := t.TempDir()
	raw := []byte("hello world")

	first, _, err := RegisterUpload(raw, "greeting.txt", holding)
	require.NoError(t, err)

	// Simulate an index lost to a crash: the stored file alone must be
	// enough to detect the duplicate.
	require.NoError(t, os.Remove(filepath.Join(holding, hashIndexName)))

	second, dup, err := RegisterUpload(raw, "greeting_again.txt", holding)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, first, second)
}

func TestRegisterUpload_StaleRecordIsReplaced(t *testing.T) {
	holding := t.TempDir()
	raw := []byte("ephemeral")

	first, _, err := RegisterUpload(raw, "gone.txt", holding)
	require.NoError(t, err)
	require.NoError(t, os.Remove(first))

	second, dup, err := RegisterUpload(raw, "gone.txt", holding)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.FileExists(t, second)
}

func TestRegisterUpload_CorruptIndexIsIgnored(t *testing.T) {
	holding := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(holding, hashIndexName), []byte("{not json"), 0644))

	_, dup, err := RegisterUpload([]byte("content"), "file.txt", holding)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestStoredName_CollisionKeepsExtension(t *testing.T) {
	holding := t.TempDir()

	first := storedName(holding, "tips.csv")
	require.NoError(t, os.WriteFile(filepath.Join(holding, first), []byte("a"), 0644))

	second := storedName(holding, "tips.csv")
	assert.NotEqual(t, first, second)
	assert.Equal(t, ".csv", filepath.Ext(second))
}

func TestRegisterUpload_SameNameDifferentContentKeepsExtension(t *testing.T) {
	holding := t.TempDir()

	first, _, err := RegisterUpload([]byte("a,b\n1,2\n"), "tips.csv", holding)
	require.NoError(t, err)
	second, dup, err := RegisterUpload([]byte("a,b\n3,4\n"), "tips.csv", holding)
	require.NoError(t, err)

	assert.False(t, dup)
	assert.NotEqual(t, first, second)
	assert.Equal(t, ".csv", filepath.Ext(first))
	assert.Equal(t, ".csv", filepath.Ext(second))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tips.csv", "tips.csv"},
		{"../../etc/passwd", "passwd"},
		{"my report (final).pdf", "my_report__final_.pdf"},
		{"", "upload"},
		{"...", "upload"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFileName(tt.in), "input %q", tt.in)
	}
}
