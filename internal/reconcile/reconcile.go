// SPDX-License-Identifier: MPL-2.0

// Package reconcile compares desired package requirements against an
// environment's installed state and produces the minimal batch needing
// installation or update.
package reconcile

import (
	"context"

	"github.com/charmbracelet/log"

	"pyforge-cli/internal/pyenv"
	"pyforge-cli/pkg/pyreq"
)

type (
	// InventoryProvider supplies a fresh installed-package snapshot. The
	// reconciler queries it on every call; nothing is cached across calls.
	InventoryProvider interface {
		Inventory(ctx context.Context) (pyenv.Inventory, error)
	}

	// Report is the outcome of one reconciliation pass. It is computed
	// fresh per call and carries no reference to the inventory it was
	// derived from.
	Report struct {
		// Unmet holds the requirement strings that are missing or
		// version-incompatible, in input encounter order, each preserving
		// the caller's original specifier syntax. This is exactly the batch
		// a subsequent install should process.
		Unmet []string
		// Skipped records requirement inputs that could not be parsed.
		// They are reported, never fatal.
		Skipped []pyreq.ParseIssue
		// Checked is the number of well-formed requirements examined.
		Checked int
	}

	// Reconciler checks requirements against installed state. It only
	// reports; it never installs, and it never requests force-reinstalls —
	// the install layer applies --upgrade to the whole unmet batch and
	// --force-reinstall only on explicit caller request.
	Reconciler struct {
		logger *log.Logger
	}
)

// New creates a Reconciler logging through the given logger.
func New(logger *log.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Satisfied reports whether all requirements in the report were met.
func (r Report) Satisfied() bool { return len(r.Unmet) == 0 }

// Reconcile normalizes the requirement source, takes one inventory snapshot,
// and checks every requirement against it. A requirement is met iff the
// package is installed and, when a specifier is present, the installed
// version satisfies it (pre-releases included). Absent or incompatible
// packages land in Report.Unmet under their original requirement string.
//
// The pass is pure read+compare: no network access, no installation side
// effects. Reconciling an already-satisfied set twice yields the same empty
// result both times.
func (r *Reconciler) Reconcile(ctx context.Context, source pyreq.Source, provider InventoryProvider) (Report, error) {
	reqs, skipped := source.Normalize()
	for _, issue := range skipped {
		r.logger.Warn("skipping malformed requirement", "input", issue.Input, "err", issue.Err)
	}

	report := Report{Skipped: skipped}
	if len(reqs) == 0 {
		return report, nil
	}

	inventory, err := provider.Inventory(ctx)
	if err != nil {
		return Report{}, err
	}

	for _, req := range reqs {
		report.Checked++

		installed, ok := inventory.Version(req.Name)
		if !ok {
			r.logger.Debug("requirement unmet: package not installed", "package", req.Name)
			report.Unmet = append(report.Unmet, req.String())
			continue
		}

		if !req.HasSpecifier() {
			r.logger.Debug("requirement met", "package", req.Name, "installed", installed)
			continue
		}

		satisfied, err := req.Satisfied(installed)
		if err != nil {
			// An uncomparable installed version cannot prove the requirement
			// met; treat it as needing update rather than failing the batch.
			r.logger.Warn("cannot compare installed version; scheduling update",
				"package", req.Name, "installed", installed, "err", err)
			report.Unmet = append(report.Unmet, req.String())
			continue
		}

		if satisfied {
			r.logger.Debug("requirement met", "package", req.Name, "installed", installed, "specifier", req.Specifier)
			continue
		}

		r.logger.Info("requirement unmet: version incompatible",
			"package", req.Name, "installed", installed, "specifier", req.Specifier)
		report.Unmet = append(report.Unmet, req.String())
	}

	return report, nil
}
