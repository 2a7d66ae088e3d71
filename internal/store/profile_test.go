package store_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/hyperengineering/wellspring/internal/store"
)

func TestValidateProfileID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"default", false},
		{"_system", false},
		{"work", false},
		{"night-shift", false},
		{"a", false},
		{"p2", false},
		{strings.Repeat("a", 64), false},
		{"", true},
		{"Work", true},
		{"-work", true},
		{"work-", true},
		{"night--shift", true},
		{"org/team", true},
		{"has space", true},
		{strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := store.ValidateProfileID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateProfileID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, store.ErrInvalidProfileID) {
				t.Errorf("error = %v, want ErrInvalidProfileID", err)
			}
		})
	}
}

func TestValidateProfileIDForCreation(t *testing.T) {
	if err := store.ValidateProfileIDForCreation("default"); !errors.Is(err, store.ErrReservedProfileID) {
		t.Errorf("default: error = %v, want ErrReservedProfileID", err)
	}
	if err := store.ValidateProfileIDForCreation("weekend"); err != nil {
		t.Errorf("weekend: unexpected error %v", err)
	}
	if err := store.ValidateProfileIDForCreation("Bad"); !errors.Is(err, store.ErrInvalidProfileID) {
		t.Errorf("Bad: error = %v, want ErrInvalidProfileID", err)
	}
}
