// SPDX-License-Identifier: MPL-2.0

package pyenv

import "testing"

func TestParseInventory(t *testing.T) {
	data := []byte(`[
		{"name": "Flask", "version": "2.3.2"},
		{"name": "zope.interface", "version": "6.0"},
		{"name": "numpy", "version": "1.24.0"}
	]`)

	inv, err := ParseInventory(data)
	if err != nil {
		t.Fatalf("ParseInventory() error = %v", err)
	}

	tests := []struct {
		query       string
		wantVersion string
		wantFound   bool
	}{
		{query: "flask", wantVersion: "2.3.2", wantFound: true},
		{query: "Flask", wantVersion: "2.3.2", wantFound: true},
		{query: "zope-interface", wantVersion: "6.0", wantFound: true},
		{query: "zope.interface", wantVersion: "6.0", wantFound: true},
		{query: "numpy", wantVersion: "1.24.0", wantFound: true},
		{query: "requests", wantFound: false},
	}

	for _, tt := range tests {
		got, found := inv.Version(tt.query)
		if found != tt.wantFound || got != tt.wantVersion {
			t.Errorf("Version(%q) = %q, %v; want %q, %v", tt.query, got, found, tt.wantVersion, tt.wantFound)
		}
	}
}

func TestParseInventory_Invalid(t *testing.T) {
	if _, err := ParseInventory([]byte("not json")); err == nil {
		t.Error("ParseInventory() error = nil for invalid input")
	}
}

func TestParseInventory_Empty(t *testing.T) {
	inv, err := ParseInventory([]byte("[]"))
	if err != nil {
		t.Fatalf("ParseInventory() error = %v", err)
	}
	if inv.Has("anything") {
		t.Error("empty inventory reported a package as present")
	}
}
