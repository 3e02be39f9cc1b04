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
	"errors"
	"fmt"
	"strings"
)

// Stage identifies which part of the workspace pipeline an error surfaced in.
type Stage string

// Pipeline stages.
const (
	StageIdentity    Stage = "identity"
	StageUpload      Stage = "upload"
	StageWorkspace   Stage = "workspace"
	StageRouting     Stage = "routing"
	StagePersistence Stage = "persistence"
	StageDiscovery   Stage = "discovery"
)

// ErrNoDatasetBound reports that a session has no bound dataset and
// bounded discovery found nothing usable.
var ErrNoDatasetBound = errors.New("no dataset file available")

// StageError is the structured failure surfaced to tool callers. It names
// the stage that failed and, where applicable, carries a remediation hint
// such as the candidate files seen during discovery.
type StageError struct {
	// Stage is the pipeline stage that failed.
	Stage Stage
	// Err is the underlying cause.
	Err error
	// Hint is an optional remediation hint for the end user.
	Hint string
	// Candidates lists nearby files considered during discovery.
	Candidates []string
}

// Error implements the error interface.
func (e *StageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Stage, e.Err)
	if e.Hint != "" {
		fmt.Fprintf(&b, " (%s)", e.Hint)
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, "; candidates: %s", strings.Join(e.Candidates, ", "))
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// stageErr wraps err with its pipeline stage.
func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
