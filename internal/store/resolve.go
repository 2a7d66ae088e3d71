package store

import (
	"fmt"
	"os"
)

// ProfileEnvVar names the environment variable selecting a profile.
const ProfileEnvVar = "WELLSPRING_PROFILE"

// ResolveProfile picks the profile to use: explicit, then WELLSPRING_PROFILE,
// then "default".
func ResolveProfile(explicit string) (string, error) {
	if explicit != "" {
		if err := ValidateProfileID(explicit); err != nil {
			return "", fmt.Errorf("invalid profile %q: %w", explicit, err)
		}
		return explicit, nil
	}

	if env := os.Getenv(ProfileEnvVar); env != "" {
		if err := ValidateProfileID(env); err != nil {
			return "", fmt.Errorf("invalid %s %q: %w", ProfileEnvVar, env, err)
		}
		return env, nil
	}

	return DefaultProfile, nil
}
