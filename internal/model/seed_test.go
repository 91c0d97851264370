package model

import (
	"errors"
	"testing"
)

func TestSeedValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seed    Seed
		wantErr error
	}{
		{
			name: "valid seed",
			seed: Seed{URL: "https://bid3.afry.com/pages/user-manual/inputs.html", Category: "user-manual"},
		},
		{
			name:    "empty URL",
			seed:    Seed{Category: "user-manual"},
			wantErr: ErrSeedEmptyURL,
		},
		{
			name:    "empty category",
			seed:    Seed{URL: "https://bid3.afry.com/pages/user-manual/inputs.html"},
			wantErr: ErrSeedEmptyCategory,
		},
		{
			name:    "relative URL",
			seed:    Seed{URL: "/pages/user-manual/inputs.html", Category: "user-manual"},
			wantErr: ErrSeedNotAbsolute,
		},
		{
			name:    "non-http scheme",
			seed:    Seed{URL: "ftp://bid3.afry.com/pages/inputs.html", Category: "user-manual"},
			wantErr: ErrSeedNotAbsolute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.seed.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
