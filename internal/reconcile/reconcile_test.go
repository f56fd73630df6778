// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"pyforge-cli/internal/pyenv"
	"pyforge-cli/pkg/pyreq"
)

type fakeInventory struct {
	installed map[string]string
	err       error
	queries   int
}

func (f *fakeInventory) Inventory(ctx context.Context) (pyenv.Inventory, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	inv := make(pyenv.Inventory, len(f.installed))
	for k, v := range f.installed {
		inv[k] = v
	}
	return inv, nil
}

func newReconciler() *Reconciler {
	return New(log.New(io.Discard))
}

func assertUnmet(t *testing.T, report Report, want []string) {
	t.Helper()
	if len(report.Unmet) != len(want) {
		t.Fatalf("Unmet = %v, want %v", report.Unmet, want)
	}
	for i := range want {
		if report.Unmet[i] != want[i] {
			t.Errorf("Unmet[%d] = %q, want %q", i, report.Unmet[i], want[i])
		}
	}
}

func TestReconcile_FullySatisfiedYieldsEmpty(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{
		"numpy":    "1.24.0",
		"requests": "2.31.0",
	}}

	source := pyreq.FromList([]string{"numpy>=1.20", "requests"})
	report, err := newReconciler().Reconcile(context.Background(), source, inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if !report.Satisfied() {
		t.Errorf("Unmet = %v, want empty", report.Unmet)
	}

	// Idempotence: a second pass with unchanged state yields the same result.
	again, err := newReconciler().Reconcile(context.Background(), source, inv)
	if err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if !again.Satisfied() {
		t.Errorf("second pass Unmet = %v, want empty", again.Unmet)
	}
	if inv.queries != 2 {
		t.Errorf("inventory queried %d times, want 2 (one fresh snapshot per call)", inv.queries)
	}
}

func TestReconcile_AbsentPackage(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{}}

	report, err := newReconciler().Reconcile(context.Background(),
		pyreq.FromMap(map[string]string{"numpy": ">=1.20"}), inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	assertUnmet(t, report, []string{"numpy>=1.20"})
}

func TestReconcile_VersionIncompatiblePreservesSpecifier(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{"requests": "1.0"}}

	report, err := newReconciler().Reconcile(context.Background(),
		pyreq.FromMap(map[string]string{"requests": ">=2.0"}), inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	// The original specifier string is reported, not a forced pin.
	assertUnmet(t, report, []string{"requests>=2.0"})
}

func TestReconcile_ListDedupFirstWins(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{}}

	report, err := newReconciler().Reconcile(context.Background(),
		pyreq.FromList([]string{"numpy", "numpy>=1.0"}), inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if report.Checked != 1 {
		t.Errorf("Checked = %d, want 1 (duplicate name dropped)", report.Checked)
	}
	assertUnmet(t, report, []string{"numpy"})
}

func TestReconcile_MalformedEntriesDoNotDropValidOnes(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{"requests": "2.31.0"}}

	source := pyreq.FromList([]string{"numpy>=1.20", "==broken==", "requests>=2.0"})
	report, err := newReconciler().Reconcile(context.Background(), source, inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("Skipped = %v, want one entry", report.Skipped)
	}
	assertUnmet(t, report, []string{"numpy>=1.20"})
	if report.Checked != 2 {
		t.Errorf("Checked = %d, want 2", report.Checked)
	}
}

func TestReconcile_EncounterOrderPreserved(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{}}

	source := pyreq.FromList([]string{"zlib-ng", "aiohttp>=3.0", "marshmallow"})
	report, err := newReconciler().Reconcile(context.Background(), source, inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	assertUnmet(t, report, []string{"zlib-ng", "aiohttp>=3.0", "marshmallow"})
}

func TestReconcile_UncomparableInstalledVersionSchedulesUpdate(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{"weird": "not-a-version"}}

	report, err := newReconciler().Reconcile(context.Background(),
		pyreq.FromString("weird>=1.0"), inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	assertUnmet(t, report, []string{"weird>=1.0"})
}

func TestReconcile_NoSpecifierPresenceSuffices(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{"weird": "not-a-version"}}

	report, err := newReconciler().Reconcile(context.Background(),
		pyreq.FromString("weird"), inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if !report.Satisfied() {
		t.Errorf("Unmet = %v, want empty (presence alone satisfies)", report.Unmet)
	}
}

func TestReconcile_EmptySourceSkipsInventoryQuery(t *testing.T) {
	inv := &fakeInventory{installed: map[string]string{}}

	report, err := newReconciler().Reconcile(context.Background(), pyreq.Source{}, inv)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if !report.Satisfied() || report.Checked != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
	if inv.queries != 0 {
		t.Errorf("inventory queried %d times for empty input, want 0", inv.queries)
	}
}

func TestReconcile_InventoryErrorPropagates(t *testing.T) {
	wantErr := errors.New("listing failed")
	inv := &fakeInventory{err: wantErr}

	_, err := newReconciler().Reconcile(context.Background(), pyreq.FromString("numpy"), inv)
	if !errors.Is(err, wantErr) {
		t.Errorf("Reconcile() error = %v, want %v", err, wantErr)
	}
}
