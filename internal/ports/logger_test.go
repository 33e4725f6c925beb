package ports

import (
	"context"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"WARNING", LevelWarn, false},
		{"error", LevelError, false},
		{"  info  ", LevelInfo, false},
		{"verbose", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || LevelError.String() != "ERROR" {
		t.Error("level names should match their LOG_LEVEL spellings")
	}
	if Level(42).String() != "UNKNOWN" {
		t.Error("out-of-range levels should render as UNKNOWN")
	}
}

func TestDiscardLogger(t *testing.T) {
	ctx := context.Background()

	DiscardLogger.Debug(ctx, "dropped")
	DiscardLogger.Error(ctx, "dropped", F("key", "value"))

	if DiscardLogger.With(F("key", "value")) != DiscardLogger {
		t.Error("With on the discard logger should return itself")
	}
}
