//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name     string            `json:"name"`
	Count    int               `json:"count,omitempty"`
	Ratio    *float64          `json:"ratio,omitempty"`
	Tags     []string          `json:"tags"`
	Labels   map[string]string `json:"labels"`
	Hidden   string            `json:"-"`
	internal string
}

func TestGenerateJSONSchema_Struct(t *testing.T) {
	schema := GenerateJSONSchema(reflect.TypeOf(sampleRequest{}))

	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)

	assert.Equal(t, "string", schema.Properties["name"].Type)
	assert.Equal(t, "integer", schema.Properties["count"].Type)
	assert.Equal(t, "number,null", schema.Properties["ratio"].Type)
	assert.Equal(t, "array", schema.Properties["tags"].Type)
	assert.Equal(t, "string", schema.Properties["tags"].Items.Type)
	assert.Equal(t, "object", schema.Properties["labels"].Type)

	_, hasHidden := schema.Properties["Hidden"]
	assert.False(t, hasHidden)
	_, hasInternal := schema.Properties["internal"]
	assert.False(t, hasInternal)

	// omitempty and pointer fields are optional.
	assert.ElementsMatch(t, []string{"name", "tags", "labels"}, schema.Required)
}

func TestGenerateJSONSchema_Pointer(t *testing.T) {
	schema := GenerateJSONSchema(reflect.TypeOf(&sampleRequest{}))
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)
	assert.Contains(t, schema.Properties, "name")
}

type nestedRequest struct {
	Inner sampleRequest `json:"inner"`
}

func TestGenerateJSONSchema_Nested(t *testing.T) {
	schema := GenerateJSONSchema(reflect.TypeOf(nestedRequest{}))
	require.NotNil(t, schema)
	inner := schema.Properties["inner"]
	require.NotNil(t, inner)
	assert.Equal(t, "object", inner.Type)
	assert.Contains(t, inner.Properties, "name")
}

type describedRequest struct {
	FileName string `json:"file_name" jsonschema:"description=The upload's display name, e.g. 'tips.csv'."`
	Plain    string `json:"plain"`
}

func TestGenerateJSONSchema_Descriptions(t *testing.T) {
	schema := GenerateJSONSchema(reflect.TypeOf(describedRequest{}))
	require.NotNil(t, schema)

	// The description runs to the end of the tag, commas included.
	assert.Equal(t, "The upload's display name, e.g. 'tips.csv'.", schema.Properties["file_name"].Description)
	assert.Empty(t, schema.Properties["plain"].Description)
}

func TestGenerateFieldSchema_Scalars(t *testing.T) {
	assert.Equal(t, "string", GenerateFieldSchema(reflect.TypeOf("")).Type)
	assert.Equal(t, "integer", GenerateFieldSchema(reflect.TypeOf(0)).Type)
	assert.Equal(t, "number", GenerateFieldSchema(reflect.TypeOf(0.0)).Type)
	assert.Equal(t, "boolean", GenerateFieldSchema(reflect.TypeOf(true)).Type)
}
