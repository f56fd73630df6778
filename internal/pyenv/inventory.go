// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pyforge-cli/internal/backend"
	"pyforge-cli/pkg/pyreq"
)

type (
	// Inventory is a point-in-time snapshot of an environment's installed
	// packages, keyed by canonical name. It is never cached across
	// reconciliation calls; results are only as fresh as the last query.
	Inventory map[string]string

	// InventorySource queries an environment's installed-package metadata
	// through its backend tool.
	InventorySource struct {
		Tool    backend.Tool
		Invoker *backend.Invoker
	}

	// listedPackage is one entry of `pip list --format=json` output
	// (uv emits the same shape).
	listedPackage struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
)

// Version returns the installed version of a package, matching by canonical
// name. The second return is false when the package is absent.
func (inv Inventory) Version(name string) (string, bool) {
	v, ok := inv[pyreq.CanonicalName(name)]
	return v, ok
}

// Has reports whether the package is present in the snapshot.
func (inv Inventory) Has(name string) bool {
	_, ok := inv.Version(name)
	return ok
}

// ParseInventory decodes `pip list --format=json` output into an Inventory.
func ParseInventory(data []byte) (Inventory, error) {
	var listed []listedPackage
	if err := json.Unmarshal(data, &listed); err != nil {
		return nil, fmt.Errorf("decode package listing: %w", err)
	}

	inv := make(Inventory, len(listed))
	for _, p := range listed {
		inv[pyreq.CanonicalName(p.Name)] = p.Version
	}
	return inv, nil
}

// Inventory runs the backend's list command and decodes the snapshot.
func (s InventorySource) Inventory(ctx context.Context) (Inventory, error) {
	result := s.Invoker.Run(ctx, s.Tool.ListCommand(), backend.OutputCapture, false)
	if !result.Success() {
		return nil, fmt.Errorf("query installed packages: %w", errors.New(result.Diagnostic()))
	}
	return ParseInventory([]byte(result.Output))
}
