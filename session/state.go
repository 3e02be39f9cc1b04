//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package session

// State prefix constants for different scope levels.
//
// Keys without a prefix are session-scoped and are cleared when the
// session ends. App- and user-prefixed keys outlive the session and are
// merged into the session view on read. Temp-prefixed keys are never
// persisted by any service implementation.
const (
	StateAppPrefix  = "app:"
	StateUserPrefix = "user:"
	StateTempPrefix = "temp:"
)
