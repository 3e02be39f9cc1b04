//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import "context"

// Service defines the interface for artifact storage and retrieval operations.
//
// Implementations back the dual-backend persister: the local filesystem
// service is the durable source of truth, while remote implementations
// (such as the COS service) act as the optional, never-authoritative mirror.
type Service interface {
	// SaveArtifact saves an artifact to the artifact service storage.
	//
	// The artifact is a file identified by the session info and filename.
	// Returns the revision ID of the saved artifact. The first version of
	// an artifact has revision ID 0; each successful save of the same
	// filename increments it by 1, so versions are strictly increasing.
	SaveArtifact(ctx context.Context, sessionInfo SessionInfo, filename string, artifact *Artifact) (int, error)

	// LoadArtifact gets an artifact from the artifact service storage.
	//
	// If version is nil the latest version is returned. Returns nil
	// (with a nil error) if the artifact does not exist.
	LoadArtifact(ctx context.Context, sessionInfo SessionInfo, filename string, version *int) (*Artifact, error)

	// ListArtifactKeys lists all the artifact filenames within a session,
	// including the user-namespaced filenames visible to that session.
	ListArtifactKeys(ctx context.Context, sessionInfo SessionInfo) ([]string, error)

	// DeleteArtifact deletes all versions of an artifact. Deleting an
	// artifact that does not exist is not an error.
	DeleteArtifact(ctx context.Context, sessionInfo SessionInfo, filename string) error

	// ListVersions lists all versions of an artifact in ascending order.
	ListVersions(ctx context.Context, sessionInfo SessionInfo, filename string) ([]int, error)
}
