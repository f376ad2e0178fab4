// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rgssad

package rgssad

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/woozymasta/pathrules"
)

// EntryFilter selects entries by glob rules, regular expression and path prefix.
// All configured stages must accept a path. Zero-value filter accepts everything.
type EntryFilter struct {
	matcher *pathrules.Matcher
	pattern *regexp.Regexp
	prefix  string
}

// NewEntryFilter compiles filter options.
func NewEntryFilter(opts FilterOptions) (*EntryFilter, error) {
	opts.applyDefaults()

	f := &EntryFilter{prefix: NormalizePath(opts.Prefix)}

	rules := normalizeFilterRules(opts.Rules)
	if len(rules) > 0 {
		matcher, err := pathrules.NewMatcher(rules, opts.MatcherOptions)
		if err != nil {
			return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidFilter, err)
		}

		f.matcher = matcher
	}

	if opts.Pattern != "" {
		re, err := regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: compile pattern %q: %w", ErrInvalidFilter, opts.Pattern, err)
		}

		f.pattern = re
	}

	return f, nil
}

// Match reports whether entry path passes every configured stage.
func (f *EntryFilter) Match(entryPath string) bool {
	if f == nil {
		return true
	}

	candidate := NormalizePath(entryPath)
	if f.prefix != "" && candidate != f.prefix && !strings.HasPrefix(candidate, f.prefix+"/") {
		return false
	}

	if f.matcher != nil && (candidate == "" || !f.matcher.Included(candidate, false)) {
		return false
	}

	if f.pattern != nil && !f.pattern.MatchString(entryPath) {
		return false
	}

	return true
}

// Filter returns entries accepted by f in original order.
func (f *EntryFilter) Filter(entries []EntryInfo) []EntryInfo {
	out := make([]EntryInfo, 0, len(entries))
	for _, entry := range entries {
		if f.Match(entry.Path) {
			out = append(out, entry)
		}
	}

	return out
}

// FilterEntries compiles opts and returns accepted entries.
func FilterEntries(entries []EntryInfo, opts FilterOptions) ([]EntryInfo, error) {
	f, err := NewEntryFilter(opts)
	if err != nil {
		return nil, err
	}

	return f.Filter(entries), nil
}

// IncludeRules builds include rules from raw glob patterns.
func IncludeRules(patterns ...string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		rules = append(rules, pathrules.Rule{
			Action:  pathrules.ActionInclude,
			Pattern: pattern,
		})
	}

	return rules
}

// normalizeFilterRules normalizes rule patterns and drops empty patterns.
func normalizeFilterRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}
