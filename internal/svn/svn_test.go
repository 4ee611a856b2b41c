package svn

import "testing"

func TestInstalled(t *testing.T) {
	_ = Installed()
}

func TestRepository_Checkout_NotInstalled(t *testing.T) {
	if Installed() {
		t.Skip("svn is installed in this environment, cannot exercise the not-installed path")
	}

	r := NewRepo("https://example.invalid/repo/trunk", false)

	err := r.Checkout(t.Context(), t.TempDir(), "")
	if err != ErrNotInstalled {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}
