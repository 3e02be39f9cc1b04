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
	"path/filepath"
	"regexp"
	"strings"

	"trpc.group/trpc-go/trpc-dataspace-go/session"
)

const (
	// GenericSlug is the terminal fallback dataset identifier.
	GenericSlug = "uploaded"
	// slugMaxLen bounds the length of a derived slug.
	slugMaxLen = 48
	// slugHeaderTokens is how many column headers a synthesized slug samples.
	slugHeaderTokens = 3
)

// genericNames are display names too unspecific to identify a dataset.
var genericNames = map[string]bool{
	"data":     true,
	"dataset":  true,
	"file":     true,
	"upload":   true,
	"uploaded": true,
	"untitled": true,
	"unnamed":  true,
	"temp":     true,
	"tmp":      true,
	"test":     true,
	"blob":     true,
}

// timestampPrefix matches the numeric timestamp the holding area prepends
// to stored upload names, e.g. "1714988700_" or "20250101T090000-".
var timestampPrefix = regexp.MustCompile(`^[0-9]{6,}[tT]?[0-9]*[-_]`)

// ResolveSlug derives the stable, filesystem-safe dataset slug for the
// session. Resolution order, first success wins:
//
//  1. a slug already recorded in the session state, unless generic;
//  2. the human-supplied display name, sanitized, unless generic;
//  3. the stored file's base name with any timestamp prefix stripped;
//  4. a synthesis from the first few column headers;
//  5. the generic fallback.
//
// On success the slug is written back into the session state so later
// calls short-circuit at step 1. ResolveSlug never fails; the worst case
// is the generic fallback.
func ResolveSlug(sess *session.Session, displayName, filePath string, headers []string) string {
	if existing, ok := sess.GetState(session.KeyDatasetSlug); ok {
		if slug := string(existing); slug != "" && !isGenericSlug(slug) {
			return slug
		}
	}

	slug := slugFromName(displayName)
	if slug == "" {
		slug = slugFromPath(filePath)
	}
	if slug == "" {
		slug = slugFromHeaders(headers)
	}
	if slug == "" {
		slug = GenericSlug
	}

	sess.SetState(session.KeyDatasetSlug, []byte(slug))
	return slug
}

// slugFromName sanitizes a display name into a slug, rejecting generic
// placeholders.
func slugFromName(name string) string {
	if name == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	slug := sanitizeSlug(base)
	if slug == "" || isGenericSlug(slug) {
		return ""
	}
	return slug
}

// slugFromPath derives a slug from a stored file path, stripping the
// timestamp prefix the holding area adds.
func slugFromPath(path string) string {
	if path == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = timestampPrefix.ReplaceAllString(base, "")
	slug := sanitizeSlug(base)
	if slug == "" || isGenericSlug(slug) {
		return ""
	}
	return slug
}

// slugFromHeaders synthesizes a slug from an ordered sample of column
// header tokens.
func slugFromHeaders(headers []string) string {
	tokens := make([]string, 0, slugHeaderTokens)
	for _, h := range headers {
		if len(tokens) == slugHeaderTokens {
			break
		}
		if t := sanitizeSlug(h); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return ""
	}
	return truncateSlug(strings.Join(tokens, "_"))
}

// sanitizeSlug lowercases s and reduces it to [a-z0-9_], collapsing every
// run of other characters into a single underscore.
func sanitizeSlug(s string) string {
	var b strings.Builder
	lastUnderscore := true // suppress leading underscores
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return truncateSlug(strings.Trim(b.String(), "_"))
}

func truncateSlug(s string) string {
	if len(s) > slugMaxLen {
		s = s[:slugMaxLen]
	}
	return strings.Trim(s, "_")
}

// isGenericSlug reports whether slug carries no dataset identity: a known
// placeholder or a purely numeric token such as a bare timestamp.
func isGenericSlug(slug string) bool {
	if genericNames[slug] {
		return true
	}
	stripped := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '_' {
			return -1
		}
		return r
	}, slug)
	return stripped == ""
}
