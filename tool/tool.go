//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package tool provides the tool interfaces exposed to agent integrations.
package tool

import (
	"context"
)

// Tool is the interface implemented by all tools.
type Tool interface {
	// Declaration returns the metadata describing the tool.
	Declaration() *Declaration
}

// CallableTool defines the interface for tools that support calling operations.
type CallableTool interface {
	// Call calls the tool with the provided context and arguments.
	// Returns the result of execution or an error if the operation fails.
	Call(ctx context.Context, jsonArgs []byte) (any, error)

	Tool
}

// Set is a named collection of callable tools.
type Set interface {
	// Tools returns the callable tools of the set.
	Tools() []CallableTool
}

// Declaration describes the metadata of a tool, such as its name, description, and expected arguments.
type Declaration struct {
	// Name is the unique identifier of the tool.
	Name string `json:"name"`

	// Description explains the tool's purpose and functionality.
	Description string `json:"description"`

	// InputSchema defines the expected input for the tool in JSON schema format.
	InputSchema *Schema `json:"inputSchema"`

	// OutputSchema defines the expected output for the tool in JSON schema format.
	OutputSchema *Schema `json:"outputSchema,omitempty"`
}

// Schema represents the structure of JSON Schema used for defining arguments and responses.
// It follows the JSON Schema standard, supporting various types, properties, and validation rules.
type Schema struct {
	// Type specifies the data type (e.g., "object", "array", "string", "number").
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of the arguments, each with its own schema.
	Properties map[string]*Schema `json:"properties,omitempty"`
	// For array types, defines the schema of items in the array.
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties controls whether properties not defined in Properties are allowed.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
}
