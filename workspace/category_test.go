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
)

func TestCategoryForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Category
	}{
		{".png", CategoryPlot},
		{"svg", CategoryPlot},
		{".pdf", CategoryPlot},
		{".pkl", CategoryModel},
		{"safetensors", CategoryModel},
		{".csv", CategoryData},
		{".PARQUET", CategoryData},
		{".md", CategoryReport},
		{".html", CategoryReport},
		{".json", CategoryResult},
		{"yaml", CategoryResult},
		{".log", CategoryLog},
		{".faiss", CategoryIndex},
		{".xyz", CategoryReport},
		{"", CategoryReport},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryForExtension(tt.ext), "ext %q", tt.ext)
	}
}

func TestCategoryForName(t *testing.T) {
	assert.Equal(t, CategoryData, CategoryForName("tips.csv"))
	assert.Equal(t, CategoryPlot, CategoryForName("figures/loss_curve.png"))
	assert.Equal(t, CategoryReport, CategoryForName("no_extension"))
}

func TestCategories_CoverEveryDir(t *testing.T) {
	all := Categories()
	assert.Len(t, all, len(categoryDirs))

	seen := make(map[string]bool)
	for _, c := range all {
		assert.True(t, c.Valid())
		dir := c.Dir()
		assert.NotEmpty(t, dir)
		assert.False(t, seen[dir], "duplicate dir %q", dir)
		seen[dir] = true
	}
}

func TestCategoryDir_UnknownFallsBackToReports(t *testing.T) {
	assert.Equal(t, CategoryReport.Dir(), Category("bogus").Dir())
	assert.False(t, Category("bogus").Valid())
}
