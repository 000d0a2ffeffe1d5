package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  s3cret \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(Source{Name: "api key", File: path, Value: "ignored"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("expected trimmed file secret, got %q", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SHORTLISTER_TEST_KEY", " from-env ")

	got, err := Load(Source{Name: "api key", Env: "SHORTLISTER_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected env secret, got %q", got)
	}
}

func TestLoadFallsBackToValue(t *testing.T) {
	got, err := Load(Source{Name: "api key", Env: "SHORTLISTER_UNSET_KEY", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "inline" {
		t.Fatalf("expected inline secret, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatal("expected error for unconfigured secret")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(Source{Name: "api key", File: empty}); err == nil {
		t.Fatal("expected error for empty secret file")
	}

	if _, err := Load(Source{File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing secret file")
	}
}
