// Package store manages the on-disk layout of wellspring profiles. Each
// profile is a separate SQLite database under a shared root.
package store

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "default"

// Profile ID validation errors.
var (
	// ErrInvalidProfileID indicates the profile ID format is invalid.
	ErrInvalidProfileID = errors.New("invalid profile ID: must be 1-64 lowercase letters, digits, or single hyphens")

	// ErrReservedProfileID indicates the profile ID cannot be created.
	ErrReservedProfileID = errors.New("reserved profile ID")
)

// profileIDRegex: lowercase alphanumeric segments joined by single hyphens,
// no leading or trailing hyphen.
var profileIDRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,62}[a-z0-9])?$`)

var reservedProfileIDs = map[string]bool{
	DefaultProfile: true,
	"_system":      true,
}

// ValidateProfileID validates a profile ID. Reserved IDs are valid targets.
func ValidateProfileID(id string) error {
	if reservedProfileIDs[id] {
		return nil
	}
	if id == "" || strings.Contains(id, "--") || !profileIDRegex.MatchString(id) {
		return ErrInvalidProfileID
	}
	return nil
}

// IsReservedProfileID returns true if the profile ID is reserved.
func IsReservedProfileID(id string) bool {
	return reservedProfileIDs[id]
}

// ValidateProfileIDForCreation rejects reserved IDs in addition to malformed ones.
func ValidateProfileIDForCreation(id string) error {
	if err := ValidateProfileID(id); err != nil {
		return err
	}
	if IsReservedProfileID(id) {
		return ErrReservedProfileID
	}
	return nil
}
