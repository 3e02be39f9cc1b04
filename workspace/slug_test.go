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
	"testing"

	"github.com/stretchr/testify/assert"

	"trpc.group/trpc-go/trpc-dataspace-go/session"
)

func newTestSession() *session.Session {
	return &session.Session{
		ID:      "s1",
		AppName: "analyst",
		UserID:  "u1",
		State:   make(session.StateMap),
	}
}

func TestResolveSlug_FromDisplayName(t *testing.T) {
	sess := newTestSession()

	slug := ResolveSlug(sess, "Tips Dataset 2024.csv", "", nil)
	assert.Equal(t, "tips_dataset_2024", slug)

	stored, ok := sess.GetState(session.KeyDatasetSlug)
	assert.True(t, ok)
	assert.Equal(t, "tips_dataset_2024", string(stored))
}

func TestResolveSlug_ExistingWins(t *testing.T) {
	sess := newTestSession()
	sess.SetState(session.KeyDatasetSlug, []byte("tips"))

	assert.Equal(t, "tips", ResolveSlug(sess, "other_name.csv", "", nil))
}

func TestResolveSlug_GenericExistingIsReplaced(t *testing.T) {
	sess := newTestSession()
	sess.SetState(session.KeyDatasetSlug, []byte("uploaded"))

	assert.Equal(t, "tips", ResolveSlug(sess, "tips.csv", "", nil))
}

func TestResolveSlug_GenericNameFallsThroughToPath(t *testing.T) {
	sess := newTestSession()

	slug := ResolveSlug(sess, "data.csv", "/uploads/1714988700_sales_q3.csv", nil)
	assert.Equal(t, "sales_q3", slug)
}

func TestResolveSlug_TimestampOnlyPathFallsThroughToHeaders(t *testing.T) {
	sess := newTestSession()

	slug := ResolveSlug(sess, "", "/uploads/1714988700_data.csv", []string{"total_bill", "tip", "sex", "smoker"})
	assert.Equal(t, "total_bill_tip_sex", slug)
}

func TestResolveSlug_GenericFallback(t *testing.T) {
	sess := newTestSession()

	assert.Equal(t, GenericSlug, ResolveSlug(sess, "", "", nil))
}

func TestResolveSlug_StableAcrossCalls(t *testing.T) {
	sess := newTestSession()

	first := ResolveSlug(sess, "tips.csv", "", nil)
	// A later call with a different display name must not rebind.
	second := ResolveSlug(sess, "something_else.csv", "", nil)
	assert.Equal(t, first, second)
}

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Cool Dataset!", "my_cool_dataset"},
		{"--weird__name--", "weird_name"},
		{"ALLCAPS", "allcaps"},
		{"données clients", "donn_es_clients"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeSlug(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeSlug_Truncates(t *testing.T) {
	long := ""
	for i := 0; i < 10; i++ {
		long += "abcdefghij"
	}
	out := sanitizeSlug(long)
	assert.LessOrEqual(t, len(out), slugMaxLen)
	assert.NotEmpty(t, out)
}

func TestIsGenericSlug(t *testing.T) {
	assert.True(t, isGenericSlug("data"))
	assert.True(t, isGenericSlug("uploaded"))
	assert.True(t, isGenericSlug("1714988700"))
	assert.True(t, isGenericSlug("2024_01_01"))
	assert.False(t, isGenericSlug("tips"))
	assert.False(t, isGenericSlug("sales_q3"))
}
