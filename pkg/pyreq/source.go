// SPDX-License-Identifier: MPL-2.0

package pyreq

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	sourceString sourceKind = iota + 1
	sourceList
	sourceMap
)

type (
	sourceKind int

	// Source is the tagged union of the accepted requirement input forms:
	// a single string, an ordered list of strings, or a name→specifier map.
	// It is normalized into an ordered []Requirement before any processing.
	Source struct {
		kind   sourceKind
		single string
		list   []string
		byName map[string]string
	}
)

// FromString makes a Source from a single requirement string.
func FromString(s string) Source {
	return Source{kind: sourceString, single: s}
}

// FromList makes a Source from an ordered list of requirement strings.
func FromList(items []string) Source {
	return Source{kind: sourceList, list: slices.Clone(items)}
}

// FromMap makes a Source from a package-name→specifier map. A nil or empty
// specifier value means "any version". Map iteration order is not defined in
// Go, so normalization visits keys in sorted order to keep batch install
// command lines reproducible.
func FromMap(m map[string]string) Source {
	byName := make(map[string]string, len(m))
	for k, v := range m {
		byName[k] = v
	}
	return Source{kind: sourceMap, byName: byName}
}

// IsZero reports whether the Source carries no input at all.
func (s Source) IsZero() bool { return s.kind == 0 }

// Normalize parses the source into an ordered requirement sequence.
// Malformed entries become ParseIssues and do not abort the rest.
//
// Both forms deduplicate by canonical package name. List input keeps the
// first occurrence and drops later duplicates silently. Map keys are visited
// in sorted order; keys that canonicalize to the same package keep the first
// and report the rest, since their specifiers may conflict.
func (s Source) Normalize() ([]Requirement, []ParseIssue) {
	switch s.kind {
	case sourceString:
		return normalizeList([]string{s.single})
	case sourceList:
		return normalizeList(s.list)
	case sourceMap:
		return normalizeMap(s.byName)
	default:
		return nil, nil
	}
}

func normalizeList(items []string) ([]Requirement, []ParseIssue) {
	var (
		reqs   []Requirement
		issues []ParseIssue
	)
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		req, err := Parse(item)
		if err != nil {
			issues = append(issues, ParseIssue{Input: item, Err: err})
			continue
		}
		if _, dup := seen[req.Name]; dup {
			continue
		}
		seen[req.Name] = struct{}{}
		reqs = append(reqs, req)
	}

	return reqs, issues
}

func normalizeMap(byName map[string]string) ([]Requirement, []ParseIssue) {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	var (
		reqs   []Requirement
		issues []ParseIssue
	)
	seen := make(map[string]struct{}, len(byName))

	for _, name := range names {
		// The key may itself carry a specifier; the value wins. Strip the key
		// down to its name (plus extras) before appending the value specifier.
		m := namePattern.FindStringSubmatch(strings.TrimSpace(name))
		if m == nil {
			issues = append(issues, ParseIssue{
				Input: name + byName[name],
				Err:   fmt.Errorf("%w: no package name in map key %q", ErrMalformedRequirement, name),
			})
			continue
		}
		raw := m[0] + byName[name]
		req, err := Parse(raw)
		if err != nil {
			issues = append(issues, ParseIssue{Input: raw, Err: err})
			continue
		}
		// Distinct keys can canonicalize to the same package; keeping both
		// would hand pip a self-conflicting batch ("Double requirement
		// given"). First key in sorted order wins, the collision is reported.
		if _, dup := seen[req.Name]; dup {
			issues = append(issues, ParseIssue{
				Input: raw,
				Err:   fmt.Errorf("%w: duplicate package %q from map key %q", ErrMalformedRequirement, req.Name, name),
			})
			continue
		}
		seen[req.Name] = struct{}{}
		reqs = append(reqs, req)
	}

	return reqs, issues
}
