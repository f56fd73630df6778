// SPDX-License-Identifier: MPL-2.0

// Package pyreq parses Python package requirement strings and normalizes the
// accepted requirement input forms into an ordered requirement sequence.
package pyreq

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

var (
	// ErrMalformedRequirement is the sentinel error wrapped by parse failures.
	ErrMalformedRequirement = errors.New("malformed requirement")

	// namePattern matches a PEP 508 package name with optional extras at the
	// start of a requirement string. The remainder is the version specifier.
	namePattern = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)(?:\[([A-Za-z0-9._,\s-]+)\])?`)

	// canonicalSep collapses runs of separator characters for PEP 503 names.
	canonicalSep = regexp.MustCompile(`[-_.]+`)
)

type (
	// Requirement is a parsed package requirement: a canonical name plus an
	// optional version specifier. Immutable once parsed. The original input
	// string is preserved so batch install commands keep the caller's
	// specifier syntax verbatim.
	Requirement struct {
		// Name is the PEP 503 canonical package name (lowercase, separator
		// runs collapsed to "-").
		Name string
		// Extras are the requested extras (e.g., "security" from
		// "requests[security]"). Informational; extras do not participate in
		// reconciliation.
		Extras []string
		// Specifier is the raw version specifier text (e.g., ">=2.0,<3.0"),
		// empty when the requirement is name-only.
		Specifier string
		// Raw is the original requirement string as supplied by the caller.
		Raw string
	}

	// ParseIssue records a requirement input that could not be parsed.
	// Malformed entries are reported, never fatal: the rest of the batch
	// proceeds without them.
	ParseIssue struct {
		Input string
		Err   error
	}
)

// CanonicalName normalizes a package name per PEP 503: lowercase with runs
// of "-", "_" and "." collapsed to a single "-".
func CanonicalName(name string) string {
	return canonicalSep.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Parse parses a requirement string of the form "name[extras]specifier".
// Environment markers (";…") and direct URL references ("name @ url") are not
// supported and yield ErrMalformedRequirement. The specifier, when present,
// must be valid PEP 440 syntax.
func Parse(input string) (Requirement, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Requirement{}, fmt.Errorf("%w: empty string", ErrMalformedRequirement)
	}
	if strings.Contains(s, ";") {
		return Requirement{}, fmt.Errorf("%w: environment markers are not supported: %q", ErrMalformedRequirement, input)
	}
	if strings.Contains(s, "@") {
		return Requirement{}, fmt.Errorf("%w: direct URL references are not supported: %q", ErrMalformedRequirement, input)
	}

	m := namePattern.FindStringSubmatch(s)
	if m == nil {
		return Requirement{}, fmt.Errorf("%w: no package name in %q", ErrMalformedRequirement, input)
	}

	rest := strings.TrimSpace(s[len(m[0]):])
	if rest != "" {
		if _, err := pep440.NewSpecifiers(rest); err != nil {
			return Requirement{}, fmt.Errorf("%w: bad specifier %q in %q: %v", ErrMalformedRequirement, rest, input, err)
		}
	}

	var extras []string
	if m[2] != "" {
		for _, e := range strings.Split(m[2], ",") {
			if e = strings.TrimSpace(e); e != "" {
				extras = append(extras, strings.ToLower(e))
			}
		}
	}

	return Requirement{
		Name:      CanonicalName(m[1]),
		Extras:    extras,
		Specifier: rest,
		Raw:       s,
	}, nil
}

// HasSpecifier reports whether the requirement constrains the version.
func (r Requirement) HasSpecifier() bool { return r.Specifier != "" }

// Satisfied reports whether the given installed version string meets the
// requirement's specifier. Pre-release versions are included in matching, as
// pip does when the installed version is already a pre-release. A requirement
// without a specifier is satisfied by any installed version.
func (r Requirement) Satisfied(installedVersion string) (bool, error) {
	if r.Specifier == "" {
		return true, nil
	}

	v, err := pep440.Parse(installedVersion)
	if err != nil {
		return false, fmt.Errorf("parse installed version %q of %s: %w", installedVersion, r.Name, err)
	}

	spec, err := pep440.NewSpecifiers(r.Specifier, pep440.WithPreRelease(true))
	if err != nil {
		return false, fmt.Errorf("parse specifier %q for %s: %w", r.Specifier, r.Name, err)
	}

	return spec.Check(v), nil
}

// String returns the requirement in its original syntax when available,
// otherwise "name" + specifier.
func (r Requirement) String() string {
	if r.Raw != "" {
		return r.Raw
	}
	return r.Name + r.Specifier
}
