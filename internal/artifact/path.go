//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package artifact provides internal utilities shared by artifact service implementations.
package artifact

import (
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-dataspace-go/artifact"
)

// UserNamespacePrefix marks filenames that are scoped to the user rather
// than to one session.
const UserNamespacePrefix = "user:"

// FileHasUserNamespace checks if the filename has a user namespace.
func FileHasUserNamespace(filename string) bool {
	return strings.HasPrefix(filename, UserNamespacePrefix)
}

// BuildArtifactPath constructs the artifact path for storage.
// The path format depends on whether the filename has a user namespace:
//   - For files with user namespace (starting with "user:"):
//     {app_name}/{user_id}/user/{filename}
//   - For regular session-scoped files:
//     {app_name}/{user_id}/{session_id}/{filename}
func BuildArtifactPath(sessionInfo artifact.SessionInfo, filename string) string {
	if FileHasUserNamespace(filename) {
		return fmt.Sprintf("%s/%s/user/%s", sessionInfo.AppName, sessionInfo.UserID, filename)
	}
	return fmt.Sprintf("%s/%s/%s/%s", sessionInfo.AppName, sessionInfo.UserID, sessionInfo.SessionID, filename)
}

// BuildObjectName constructs the object name for versioned storage.
// The version is appended as the final path segment.
func BuildObjectName(sessionInfo artifact.SessionInfo, filename string, version int) string {
	return fmt.Sprintf("%s/%d", BuildArtifactPath(sessionInfo, filename), version)
}

// BuildObjectNamePrefix constructs the object name prefix for listing all
// versions of a specific artifact.
func BuildObjectNamePrefix(sessionInfo artifact.SessionInfo, filename string) string {
	return BuildArtifactPath(sessionInfo, filename) + "/"
}

// BuildSessionPrefix constructs the prefix shared by all session-scoped
// artifacts of one session.
func BuildSessionPrefix(sessionInfo artifact.SessionInfo) string {
	return fmt.Sprintf("%s/%s/%s/", sessionInfo.AppName, sessionInfo.UserID, sessionInfo.SessionID)
}

// BuildUserNamespacePrefix constructs the prefix shared by all
// user-namespaced artifacts of one user.
func BuildUserNamespacePrefix(sessionInfo artifact.SessionInfo) string {
	return fmt.Sprintf("%s/%s/user/", sessionInfo.AppName, sessionInfo.UserID)
}
