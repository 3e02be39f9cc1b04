//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package function

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetRequest struct {
	Name string `json:"name"`
}

type greetResponse struct {
	Message string `json:"message"`
}

func greet(_ context.Context, req greetRequest) (greetResponse, error) {
	if req.Name == "" {
		return greetResponse{}, errors.New("name is required")
	}
	return greetResponse{Message: "hello " + req.Name}, nil
}

func TestFunctionTool_Call(t *testing.T) {
	ft := NewFunctionTool(greet,
		WithName("greet"),
		WithDescription("Greets the caller by name."),
	)

	result, err := ft.Call(context.Background(), []byte(`{"name":"ada"}`))
	require.NoError(t, err)
	assert.Equal(t, greetResponse{Message: "hello ada"}, result)
}

func TestFunctionTool_CallError(t *testing.T) {
	ft := NewFunctionTool(greet, WithName("greet"))

	_, err := ft.Call(context.Background(), []byte(`{}`))
	assert.Error(t, err)
}

func TestFunctionTool_CallBadJSON(t *testing.T) {
	ft := NewFunctionTool(greet, WithName("greet"))

	_, err := ft.Call(context.Background(), []byte(`{not json`))
	assert.Error(t, err)
}

func TestFunctionTool_Declaration(t *testing.T) {
	ft := NewFunctionTool(greet,
		WithName("greet"),
		WithDescription("Greets the caller by name."),
	)

	decl := ft.Declaration()
	require.NotNil(t, decl)
	assert.Equal(t, "greet", decl.Name)
	assert.Equal(t, "Greets the caller by name.", decl.Description)
	require.NotNil(t, decl.InputSchema)
	assert.Equal(t, "string", decl.InputSchema.Properties["name"].Type)
	require.NotNil(t, decl.OutputSchema)
	assert.Equal(t, "string", decl.OutputSchema.Properties["message"].Type)
}
