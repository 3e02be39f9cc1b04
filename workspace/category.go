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
	"path/filepath"
	"strings"
)

// Category classifies an artifact into one of the fixed workspace
// subfolders. The taxonomy is fixed and case-sensitive; every run
// directory contains exactly one subfolder per category.
type Category string

// The canonical categories.
const (
	CategoryUpload       Category = "upload"
	CategoryData         Category = "data"
	CategoryModel        Category = "model"
	CategoryReport       Category = "report"
	CategoryResult       Category = "result"
	CategoryPlot         Category = "plot"
	CategoryMetric       Category = "metric"
	CategoryIndex        Category = "index"
	CategoryLog          Category = "log"
	CategoryTmp          Category = "tmp"
	CategoryManifest     Category = "manifest"
	CategoryUnstructured Category = "unstructured"
)

// categoryDirs maps each category to its subfolder name.
var categoryDirs = map[Category]string{
	CategoryUpload:       "uploads",
	CategoryData:         "data",
	CategoryModel:        "models",
	CategoryReport:       "reports",
	CategoryResult:       "results",
	CategoryPlot:         "plots",
	CategoryMetric:       "metrics",
	CategoryIndex:        "indexes",
	CategoryLog:          "logs",
	CategoryTmp:          "tmp",
	CategoryManifest:     "manifests",
	CategoryUnstructured: "unstructured",
}

// Categories returns all categories in taxonomy order.
func Categories() []Category {
	return []Category{
		CategoryUpload, CategoryData, CategoryModel, CategoryReport,
		CategoryResult, CategoryPlot, CategoryMetric, CategoryIndex,
		CategoryLog, CategoryTmp, CategoryManifest, CategoryUnstructured,
	}
}

// Dir returns the subfolder name of the category inside a run directory.
func (c Category) Dir() string {
	if dir, ok := categoryDirs[c]; ok {
		return dir
	}
	return categoryDirs[CategoryReport]
}

// Valid reports whether c is one of the canonical categories.
func (c Category) Valid() bool {
	_, ok := categoryDirs[c]
	return ok
}

// extensionCategories is the fixed classification table. Extensions are
// lowercase without the leading dot. Anything not listed classifies as a
// report.
var extensionCategories = map[string]Category{
	// Images become plots.
	"png": CategoryPlot, "jpg": CategoryPlot, "jpeg": CategoryPlot,
	"gif": CategoryPlot, "svg": CategoryPlot, "bmp": CategoryPlot,
	"webp": CategoryPlot, "pdf": CategoryPlot,
	// Serialized models.
	"pkl": CategoryModel, "pickle": CategoryModel, "joblib": CategoryModel,
	"pt": CategoryModel, "pth": CategoryModel, "onnx": CategoryModel,
	"h5": CategoryModel, "keras": CategoryModel, "pb": CategoryModel,
	"safetensors": CategoryModel, "bin": CategoryModel,
	// Tabular data.
	"csv": CategoryData, "tsv": CategoryData, "parquet": CategoryData,
	"feather": CategoryData, "xlsx": CategoryData, "xls": CategoryData,
	"arrow": CategoryData,
	// Textual reports.
	"md": CategoryReport, "txt": CategoryReport, "html": CategoryReport,
	"rst": CategoryReport,
	// Structured results.
	"json": CategoryResult, "yaml": CategoryResult, "yml": CategoryResult,
	// Logs.
	"log": CategoryLog,
	// Search/vector indexes.
	"faiss": CategoryIndex, "idx": CategoryIndex,
}

// CategoryForExtension returns the category for a file extension. The
// extension may be passed with or without the leading dot. Unknown
// extensions default to CategoryReport.
func CategoryForExtension(ext string) Category {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if c, ok := extensionCategories[ext]; ok {
		return c
	}
	return CategoryReport
}

// CategoryForName classifies a filename by its extension.
func CategoryForName(name string) Category {
	return CategoryForExtension(filepath.Ext(name))
}
