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
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the filesystem layout and timing knobs of the workspace layer.
//
// All fields can be populated from the environment with the DATASPACE
// prefix, e.g. DATASPACE_ROOT, DATASPACE_HOLDING_DIR, DATASPACE_MIRROR_TIMEOUT.
type Config struct {
	// Root is the directory all workspace runs are created under.
	Root string `envconfig:"ROOT" default:"workspaces"`
	// HoldingDir is the transient area freshly uploaded bytes land in
	// before being bound to a workspace. Deduplication is scoped to this
	// directory: every session sharing it shares the dedup index.
	HoldingDir string `envconfig:"HOLDING_DIR" default:"uploads"`
	// MirrorTimeout bounds how long a persist call waits on the mirror
	// backend before abandoning the mirror attempt.
	MirrorTimeout time.Duration `envconfig:"MIRROR_TIMEOUT" default:"10s"`
}

// envPrefix is the envconfig prefix for workspace settings.
const envPrefix = "dataspace"

// LoadConfig reads the workspace configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("workspace config: %w", err)
	}
	return cfg, nil
}

// validate fills defaults for zero values so a hand-constructed Config
// behaves like one loaded from the environment.
func (c *Config) validate() error {
	if c.Root == "" {
		c.Root = "workspaces"
	}
	if c.HoldingDir == "" {
		c.HoldingDir = "uploads"
	}
	if c.MirrorTimeout <= 0 {
		c.MirrorTimeout = 10 * time.Second
	}
	return nil
}
