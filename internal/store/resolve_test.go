package store_test

import (
	"testing"

	"github.com/hyperengineering/wellspring/internal/store"
)

func TestResolveProfile(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		env      string
		want     string
		wantErr  bool
	}{
		{name: "default fallback", want: "default"},
		{name: "env", env: "work", want: "work"},
		{name: "explicit over env", explicit: "travel", env: "work", want: "travel"},
		{name: "reserved explicit", explicit: "default", env: "work", want: "default"},
		{name: "invalid explicit", explicit: "Not Valid", wantErr: true},
		{name: "invalid env", env: "BAD!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(store.ProfileEnvVar, tt.env)

			got, err := store.ResolveProfile(tt.explicit)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveProfile(%q) = %q, want error", tt.explicit, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveProfile(%q): %v", tt.explicit, err)
			}
			if got != tt.want {
				t.Errorf("ResolveProfile(%q) = %q, want %q", tt.explicit, got, tt.want)
			}
		})
	}
}
