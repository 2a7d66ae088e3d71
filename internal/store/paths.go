package store

import (
	"os"
	"path/filepath"
	"sort"
)

// DBFileName is the database file inside each profile directory.
const DBFileName = "wellspring.db"

// RootEnvVar overrides the profile root directory.
const RootEnvVar = "WELLSPRING_HOME"

// DefaultProfileRoot returns the directory holding all profiles:
// $WELLSPRING_HOME/profiles, else ~/.wellspring/profiles, else
// ./.wellspring/profiles when no home directory is available.
func DefaultProfileRoot() string {
	if root := os.Getenv(RootEnvVar); root != "" {
		return filepath.Join(root, "profiles")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".wellspring", "profiles")
	}
	return filepath.Join(home, ".wellspring", "profiles")
}

// ProfileDBPath returns the database path for a profile under the default root.
func ProfileDBPath(profile string) string {
	return ProfileDBPathIn(DefaultProfileRoot(), profile)
}

// ProfileDBPathIn returns the database path for a profile under root.
func ProfileDBPathIn(root, profile string) string {
	return filepath.Join(root, profile, DBFileName)
}

// ListProfiles returns the profiles under root that have a database, sorted.
// A missing root yields no profiles.
func ListProfiles(root string) ([]string, error) {
	dirents, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, d := range dirents {
		if !d.IsDir() || ValidateProfileID(d.Name()) != nil {
			continue
		}
		if _, err := os.Stat(ProfileDBPathIn(root, d.Name())); err == nil {
			out = append(out, d.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
