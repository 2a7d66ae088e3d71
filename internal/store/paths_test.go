package store_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperengineering/wellspring/internal/store"
)

func TestDefaultProfileRoot_EnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv(store.RootEnvVar, home)

	got := store.DefaultProfileRoot()
	want := filepath.Join(home, "profiles")
	if got != want {
		t.Errorf("DefaultProfileRoot() = %q, want %q", got, want)
	}
	if got := store.ProfileDBPath("work"); got != filepath.Join(want, "work", store.DBFileName) {
		t.Errorf("ProfileDBPath(work) = %q", got)
	}
}

func TestDefaultProfileRoot_Home(t *testing.T) {
	t.Setenv(store.RootEnvVar, "")
	got := store.DefaultProfileRoot()
	if filepath.Base(got) != "profiles" || filepath.Base(filepath.Dir(got)) != ".wellspring" {
		t.Errorf("DefaultProfileRoot() = %q, want .../.wellspring/profiles", got)
	}
}

func TestListProfiles(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"work", "default", "Bad-Name"} {
		path := store.ProfileDBPathIn(root, p)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("db"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// A profile directory without a database is not listed.
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListProfiles(root)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	want := []string{"default", "work"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListProfiles = %v, want %v", got, want)
	}
}

func TestListProfiles_MissingRoot(t *testing.T) {
	got, err := store.ListProfiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListProfiles = %v, want empty", got)
	}
}
