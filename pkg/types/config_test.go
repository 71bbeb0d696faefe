package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", Region: "default", GridWidth: 16},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", Region: "default", GridWidth: 16},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "empty region returns ErrRegionEmpty",
			config:  Config{Backend: BackendSQLite, GridWidth: 16},
			wantErr: ErrRegionEmpty,
		},
		{
			name:    "zero grid width returns ErrGridWidthInvalid",
			config:  Config{Backend: BackendSQLite, Region: "default"},
			wantErr: ErrGridWidthInvalid,
		},
		{
			name:    "oversized grid width returns ErrGridWidthInvalid",
			config:  Config{Backend: BackendSQLite, Region: "default", GridWidth: MaxGridWidth + 1},
			wantErr: ErrGridWidthInvalid,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: BackendSQLite, DataDir: "/tmp/data", Region: "default", GridWidth: 16},
			wantErr: nil,
		},
		{
			name:    "memory backend with wide grid",
			config:  Config{Backend: BackendMemory, Region: "nether", GridWidth: 48},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Backend: BackendSQLite}.WithDefaults()
	if cfg.Region != DefaultRegion {
		t.Errorf("Region = %q, want %q", cfg.Region, DefaultRegion)
	}
	if cfg.GridWidth != DefaultGridWidth {
		t.Errorf("GridWidth = %d, want %d", cfg.GridWidth, DefaultGridWidth)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config should validate, got %v", err)
	}

	kept := Config{Backend: BackendSQLite, Region: "end", GridWidth: 48}.WithDefaults()
	if kept.Region != "end" || kept.GridWidth != 48 {
		t.Errorf("WithDefaults overwrote explicit values: %+v", kept)
	}
}
