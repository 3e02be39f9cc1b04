//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package function wraps plain Go functions as callable tools.
package function

import (
	"context"
	"encoding/json"
	"reflect"

	itool "trpc.group/trpc-go/trpc-dataspace-go/internal/tool"
	"trpc.group/trpc-go/trpc-dataspace-go/tool"
)

// FunctionTool implements the CallableTool interface for executing functions
// with JSON-encoded arguments. It provides a generic way to wrap any function
// as a tool.
type FunctionTool[I, O any] struct {
	name         string
	description  string
	inputSchema  *tool.Schema
	outputSchema *tool.Schema
	fn           func(context.Context, I) (O, error)
}

var _ tool.CallableTool = (*FunctionTool[struct{}, struct{}])(nil)

// Option is a function that configures a FunctionTool.
type Option func(*functionToolOptions)

// functionToolOptions holds the configuration options for FunctionTool.
type functionToolOptions struct {
	name        string
	description string
}

// WithName sets the name of the function tool.
func WithName(name string) Option {
	return func(opts *functionToolOptions) {
		opts.name = name
	}
}

// WithDescription sets the description of the function tool.
func WithDescription(description string) Option {
	return func(opts *functionToolOptions) {
		opts.description = description
	}
}

// NewFunctionTool creates a new FunctionTool wrapping fn. The input and
// output JSON schemas are derived from the function's argument and result
// types via reflection.
func NewFunctionTool[I, O any](fn func(context.Context, I) (O, error), opts ...Option) *FunctionTool[I, O] {
	options := &functionToolOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var (
		emptyI I
		emptyO O
	)
	return &FunctionTool[I, O]{
		name:         options.name,
		description:  options.description,
		fn:           fn,
		inputSchema:  itool.GenerateJSONSchema(reflect.TypeOf(emptyI)),
		outputSchema: itool.GenerateJSONSchema(reflect.TypeOf(emptyO)),
	}
}

// Call executes the function tool with the provided JSON arguments.
func (ft *FunctionTool[I, O]) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	var input I
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &input); err != nil {
			return nil, err
		}
	}
	// Pointer inputs stay nil when no arguments arrive; allocate the zero
	// value so wrapped functions never receive a nil request.
	if v := reflect.ValueOf(input); v.Kind() == reflect.Pointer && v.IsNil() {
		input = reflect.New(v.Type().Elem()).Interface().(I)
	}
	return ft.fn(ctx, input)
}

// Declaration returns the tool's declaration information.
func (ft *FunctionTool[I, O]) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:         ft.name,
		Description:  ft.description,
		InputSchema:  ft.inputSchema,
		OutputSchema: ft.outputSchema,
	}
}
