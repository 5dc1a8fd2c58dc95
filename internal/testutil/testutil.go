// Package testutil provides shared test helpers for setting up vaults.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/starford/inkwell/internal/vault"
)

// TestVault creates a vault rooted in a temporary directory.
func TestVault(t *testing.T) (string, *vault.Vault) {
	t.Helper()
	dir := t.TempDir()
	v, err := vault.New(dir, "/static", slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	return v.Root(), v
}
