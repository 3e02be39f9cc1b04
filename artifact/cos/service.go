//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package cos provides a Tencent Cloud Object Storage (COS) implementation
// of the artifact service.
//
// In the dual-backend persister this service plays the mirror role: it lets
// a reader fetch artifacts by logical name through an alternate channel and
// is never authoritative. Callers must treat every failure here as
// recoverable.
//
// The object name format depends on whether the filename has a user
// namespace:
//   - For files with user namespace (starting with "user:"):
//     {app_name}/{user_id}/user/{filename}/{version}
//   - For regular session-scoped files:
//     {app_name}/{user_id}/{session_id}/{filename}/{version}
//
// Authentication credentials can be provided via the COS_SECRETID and
// COS_SECRETKEY environment variables (recommended) or the WithSecretID
// and WithSecretKey options.
package cos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"

	"trpc.group/trpc-go/trpc-dataspace-go/artifact"
	iartifact "trpc.group/trpc-go/trpc-dataspace-go/internal/artifact"
)

const defaultTimeout = 60 * time.Second

var _ artifact.Service = (*Service)(nil)

// Service is a Tencent Cloud Object Storage implementation of the artifact service.
type Service struct {
	cosClient client
}

// NewService creates a new COS artifact service for the given bucket URL.
//
// Example:
//
//	service, err := cos.NewService("https://bucket.cos.region.myqcloud.com",
//	    cos.WithTimeout(30*time.Second),
//	)
func NewService(bucketURL string, opts ...Option) (*Service, error) {
	if bucketURL == "" {
		return nil, fmt.Errorf("cos artifact service: bucket URL is required")
	}
	cli, err := buildClient(bucketURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("cos artifact service: build client: %w", err)
	}
	return &Service{cosClient: cli}, nil
}

// SaveArtifact saves an artifact to Tencent Cloud Object Storage.
func (s *Service) SaveArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, art *artifact.Artifact) (int, error) {
	// Existing versions determine the next version number.
	versions, err := s.ListVersions(ctx, sessionInfo, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to list versions: %w", err)
	}

	version := 0
	if len(versions) > 0 {
		maxVersion := 0
		for _, v := range versions {
			if v > maxVersion {
				maxVersion = v
			}
		}
		version = maxVersion + 1
	}

	objectName := iartifact.BuildObjectName(sessionInfo, filename, version)
	if err := s.cosClient.PutObject(ctx, objectName, bytes.NewReader(art.Data), art.MimeType); err != nil {
		return 0, fmt.Errorf("failed to upload artifact: %w", err)
	}

	return version, nil
}

// LoadArtifact gets an artifact from Tencent Cloud Object Storage.
func (s *Service) LoadArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, version *int) (*artifact.Artifact, error) {
	var targetVersion int
	if version == nil {
		versions, err := s.ListVersions(ctx, sessionInfo, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to list versions: %w", err)
		}
		if len(versions) == 0 {
			return nil, nil
		}
		for _, v := range versions {
			if v > targetVersion {
				targetVersion = v
			}
		}
	} else {
		targetVersion = *version
	}

	objectName := iartifact.BuildObjectName(sessionInfo, filename, targetVersion)
	respBody, respHeader, err := s.cosClient.GetObject(ctx, objectName)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to download artifact: %w", err)
	}
	defer respBody.Close()

	data, err := io.ReadAll(respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact data: %w", err)
	}

	contentType := respHeader.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &artifact.Artifact{
		Data:     data,
		MimeType: contentType,
		Name:     filename,
	}, nil
}

// ListArtifactKeys lists all the artifact filenames within a session.
func (s *Service) ListArtifactKeys(ctx context.Context, sessionInfo artifact.SessionInfo) ([]string, error) {
	filenameSet := make(map[string]bool)

	for _, prefix := range []string{
		iartifact.BuildSessionPrefix(sessionInfo),
		iartifact.BuildUserNamespacePrefix(sessionInfo),
	} {
		result, err := s.cosClient.GetBucket(ctx, prefix)
		if err != nil {
			if cos.IsNotFoundError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to list artifacts under %s: %w", prefix, err)
		}
		if result == nil {
			continue
		}
		for _, obj := range result.Contents {
			parts := strings.Split(obj.Key, "/")
			if len(parts) >= 4 {
				// The filename segment sits before the trailing version.
				filenameSet[parts[len(parts)-2]] = true
			}
		}
	}

	filenames := make([]string, 0, len(filenameSet))
	for filename := range filenameSet {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)
	return filenames, nil
}

// DeleteArtifact deletes all versions of an artifact from COS.
func (s *Service) DeleteArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) error {
	versions, err := s.ListVersions(ctx, sessionInfo, filename)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}

	for _, version := range versions {
		objectName := iartifact.BuildObjectName(sessionInfo, filename, version)
		if err := s.cosClient.DeleteObject(ctx, objectName); err != nil && !cos.IsNotFoundError(err) {
			return fmt.Errorf("failed to delete artifact version %d: %w", version, err)
		}
	}
	return nil
}

// ListVersions lists all versions of an artifact from COS, ascending.
func (s *Service) ListVersions(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) ([]int, error) {
	prefix := iartifact.BuildObjectNamePrefix(sessionInfo, filename)
	result, err := s.cosClient.GetBucket(ctx, prefix)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	var versions []int
	for _, obj := range result.Contents {
		parts := strings.Split(obj.Key, "/")
		if len(parts) == 0 {
			continue
		}
		if version, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			versions = append(versions, version)
		}
	}
	sort.Ints(versions)
	return versions, nil
}
