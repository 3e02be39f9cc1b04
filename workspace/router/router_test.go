//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-dataspace-go/workspace"
)

func newTestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, category := range workspace.Categories() {
		require.NoError(t, os.MkdirAll(filepath.Join(root, category.Dir()), 0755))
	}
	return root
}

func TestRoute_EmptyPayload(t *testing.T) {
	root := newTestRoot(t)

	artifacts, err := Route(root, nil, "analyze")
	require.NoError(t, err)
	assert.Empty(t, artifacts)

	artifacts, err = Route(root, &Payload{}, "analyze")
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestRoute_InlineDataByExtension(t *testing.T) {
	root := newTestRoot(t)
	payload := &Payload{Items: []Item{
		{Name: "loss_curve.png", Data: []byte{0x89, 'P', 'N', 'G'}},
		{Name: "model.pkl", Data: []byte("serialized")},
		{Name: "summary.md", Data: []byte("# Summary")},
		{Name: "clean.csv", Data: []byte("a,b\n1,2\n")},
	}}

	artifacts, err := Route(root, payload, "train")
	require.NoError(t, err)
	require.Len(t, artifacts, 4)

	byName := make(map[string]Artifact, len(artifacts))
	for _, a := range artifacts {
		byName[a.LogicalName] = a
		assert.FileExists(t, a.Path)
	}
	assert.Equal(t, workspace.CategoryPlot, byName["loss_curve.png"].Category)
	assert.Equal(t, workspace.CategoryModel, byName["model.pkl"].Category)
	assert.Equal(t, workspace.CategoryReport, byName["summary.md"].Category)
	assert.Equal(t, workspace.CategoryData, byName["clean.csv"].Category)

	assert.Equal(t, filepath.Join(root, "plots", "loss_curve.png"), byName["loss_curve.png"].Path)
}

func TestRoute_SourcePathWinsOverData(t *testing.T) {
	root := newTestRoot(t)
	src := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, os.WriteFile(src, []byte("<html/>"), 0644))

	artifacts, err := Route(root, &Payload{Items: []Item{
		{SourcePath: src, Data: []byte("ignored")},
	}}, "report")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	assert.Equal(t, "report.html", artifacts[0].LogicalName)
	assert.Equal(t, workspace.CategoryReport, artifacts[0].Category)
	assert.Equal(t, []byte("<html/>"), artifacts[0].Data)
}

func TestRoute_ExplicitCategoryWins(t *testing.T) {
	root := newTestRoot(t)

	artifacts, err := Route(root, &Payload{Items: []Item{
		{Name: "embeddings.bin", Data: []byte{1, 2, 3}, Category: workspace.CategoryIndex},
	}}, "index")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, workspace.CategoryIndex, artifacts[0].Category)
	assert.Equal(t, filepath.Join(root, "indexes", "embeddings.bin"), artifacts[0].Path)
}

func TestRoute_MetricFlag(t *testing.T) {
	root := newTestRoot(t)

	artifacts, err := Route(root, &Payload{Items: []Item{
		{Name: "scores.json", Data: []byte(`{"rmse":0.42}`), Metric: true},
		{Name: "config.json", Data: []byte(`{"seed":7}`)},
	}}, "evaluate")
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, workspace.CategoryMetric, artifacts[0].Category)
	assert.Equal(t, workspace.CategoryResult, artifacts[1].Category)
}

func TestRoute_UnknownExtensionGoesToReports(t *testing.T) {
	root := newTestRoot(t)

	artifacts, err := Route(root, &Payload{Items: []Item{
		{Name: "dump.xyz", Data: []byte("mystery")},
	}}, "analyze")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, workspace.CategoryReport, artifacts[0].Category)
}

func TestRoute_UnnamedItemGetsToolQualifiedName(t *testing.T) {
	root := newTestRoot(t)

	artifacts, err := Route(root, &Payload{Items: []Item{
		{Data: []byte("plain text content")},
	}}, "describe data")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	name := artifacts[0].LogicalName
	assert.Contains(t, name, "describe_data")
	assert.FileExists(t, artifacts[0].Path)
}

func TestRoute_UnreadableItemSkipped(t *testing.T) {
	root := newTestRoot(t)

	artifacts, err := Route(root, &Payload{Items: []Item{
		{Name: "gone.csv", SourcePath: "/nonexistent/gone.csv"},
		{Name: "kept.csv", Data: []byte("a,b\n")},
	}}, "clean")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "kept.csv", artifacts[0].LogicalName)
}

func TestRoute_NoContentSkipped(t *testing.T) {
	root := newTestRoot(t)

	artifacts, err := Route(root, &Payload{Items: []Item{{Name: "empty_item"}}}, "noop")
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestRoute_CreatesMissingCategoryDir(t *testing.T) {
	root := t.TempDir()

	artifacts, err := Route(root, &Payload{Items: []Item{
		{Name: "clean.csv", Data: []byte("a,b\n1,2\n")},
	}}, "clean")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, filepath.Join(root, "data", "clean.csv"), artifacts[0].Path)
	assert.FileExists(t, artifacts[0].Path)
}

func TestRoute_WriteFailureReturnsRoutedPrefix(t *testing.T) {
	root := t.TempDir()
	// A plain file where the plots folder should be makes the second
	// item's write fail after the first has landed.
	require.NoError(t, os.WriteFile(filepath.Join(root, "plots"), []byte("in the way"), 0644))

	artifacts, err := Route(root, &Payload{Items: []Item{
		{Name: "kept.csv", Data: []byte("a,b\n")},
		{Name: "curve.png", Data: []byte{0x89, 'P', 'N', 'G'}},
	}}, "train")
	require.Error(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "kept.csv", artifacts[0].LogicalName)
	assert.FileExists(t, artifacts[0].Path)
}

func TestDetectMime(t *testing.T) {
	assert.Contains(t, detectMime("scores.json", nil), "application/json")
	assert.Equal(t, "image/png", detectMime("plot.png", nil))
	assert.NotEmpty(t, detectMime("noext", []byte("plain text")))
}
