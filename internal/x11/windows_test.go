package x11

import (
	"errors"
	"strings"
	"testing"
)

func TestMoveResize(t *testing.T) {
	badWindow := errors.New("BadWindow")
	ok := func() error { return nil }
	fail := func() error { return badWindow }

	tests := []struct {
		name          string
		steps         moveResizeSteps
		wantErr       string
		wantConfigure bool
	}{
		{"request accepted", moveResizeSteps{check: ok, unmaximize: ok, request: ok}, "", false},
		{"unmaximize failure is ignored", moveResizeSteps{check: ok, unmaximize: fail, request: ok}, "", false},
		{"fallback configures", moveResizeSteps{check: ok, unmaximize: ok, request: fail}, "", true},
		{"both paths fail", moveResizeSteps{check: ok, unmaximize: ok, request: fail, configure: fail}, "failed to move window 7", true},
		{"window gone", moveResizeSteps{check: fail, unmaximize: ok, request: ok}, "window 7 is not available", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configured := false
			configure := tt.steps.configure
			if configure == nil {
				configure = ok
			}
			tt.steps.configure = func() error {
				configured = true
				return configure()
			}

			err := moveResize(7, tt.steps)
			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				if !errors.Is(err, badWindow) {
					t.Fatalf("error %v does not wrap the cause", err)
				}
			}
			if configured != tt.wantConfigure {
				t.Errorf("configured = %v, want %v", configured, tt.wantConfigure)
			}
		})
	}
}
