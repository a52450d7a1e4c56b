package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseCapability,
				Kind:   KindOutOfBounds,
				Path:   []string{"pixels", "row"},
				Import: "agave#blit_rgba",
				Detail: "buffer too short",
			},
			contains: []string{"[capability]", "out_of_bounds", "pixels.row", "agave#blit_rgba", "buffer too short"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseMemory,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[memory]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseSchedule,
				Kind:   KindGuestTrap,
				Detail: "guest trapped in update",
				Cause:  errors.New("unreachable"),
			},
			contains: []string{"[schedule]", "guest_trap", "update", "caused by", "unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should walk to cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseSyscall,
		Kind:   KindInvalidInput,
		Import: "wasi_snapshot_preview1#fd_write",
	}

	if !err.Is(&Error{Phase: PhaseSyscall, Kind: KindInvalidInput}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseCapability, Kind: KindInvalidInput}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseSyscall, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseSyscall, Kind: KindInvalidInput}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCapability, KindOutOfBounds).
		Path("dimensions").
		Import("agave", "get_dimensions").
		Value(uint32(65530)).
		Cause(cause).
		Detail("out pointer %d", 65530).
		Build()

	if err.Phase != PhaseCapability {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCapability)
	}
	if err.Kind != KindOutOfBounds {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
	}
	if len(err.Path) != 1 || err.Path[0] != "dimensions" {
		t.Errorf("Path = %v, want [dimensions]", err.Path)
	}
	if err.Import != "agave#get_dimensions" {
		t.Errorf("Import = %q, want agave#get_dimensions", err.Import)
	}
	if err.Value != uint32(65530) {
		t.Errorf("Value = %v, want 65530", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "out pointer 65530" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseMemory, 65534, 4, 65536)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint32(65534) {
			t.Errorf("Value = %v, want 65534", err.Value)
		}
		if !strings.Contains(err.Detail, "65538") {
			t.Errorf("Detail = %q, should contain range end", err.Detail)
		}
	})

	t.Run("GuestExit", func(t *testing.T) {
		err := GuestExit(3)
		if err.Kind != KindGuestExit || err.Phase != PhaseSchedule {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if err.Value != uint32(3) {
			t.Errorf("Value = %v, want 3", err.Value)
		}
	})

	t.Run("GuestTrap", func(t *testing.T) {
		cause := errors.New("wasm error: unreachable")
		err := GuestTrap("update", cause)
		if err.Kind != KindGuestTrap {
			t.Errorf("Kind = %v, want %v", err.Kind, KindGuestTrap)
		}
		if !errors.Is(err, cause) {
			t.Error("GuestTrap should wrap cause")
		}
	})

	t.Run("Registration", func(t *testing.T) {
		err := Registration(PhaseHost, "agave", "draw_line", errors.New("dup"))
		if err.Import != "agave#draw_line" {
			t.Errorf("Import = %q", err.Import)
		}
	})

	t.Run("InvalidState", func(t *testing.T) {
		err := InvalidState(PhaseSchedule, "start", "running")
		if err.Kind != KindInvalidState {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidState)
		}
		if !strings.Contains(err.Detail, "running") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseSyscall, "sockets")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseLoad, "export", "update")
		if !strings.Contains(err.Detail, `"update"`) {
			t.Errorf("Detail = %q", err.Detail)
		}
	})
}

func TestMissingImportsError(t *testing.T) {
	t.Run("single import", func(t *testing.T) {
		err := &MissingImportsError{Imports: []MissingImport{{Namespace: "agave", Function: "play_sound"}}}
		msg := err.Error()
		if !strings.Contains(msg, "missing 1") || !strings.Contains(msg, "- play_sound") {
			t.Errorf("unexpected message: %s", msg)
		}
	})

	t.Run("multiple namespaces grouped", func(t *testing.T) {
		err := &MissingImportsError{Imports: []MissingImport{
			{Namespace: "agave", Function: "play_sound"},
			{Namespace: "wasi_snapshot_preview1", Function: "sock_accept"},
			{Namespace: "agave", Function: "open_window"},
		}}
		msg := err.Error()
		if !strings.Contains(msg, "missing 3") {
			t.Errorf("error should contain count, got %s", msg)
		}
		if !strings.Contains(msg, "agave:") {
			t.Errorf("error should group by namespace")
		}
		if !strings.Contains(msg, "wasi_snapshot_preview1:") {
			t.Errorf("error should contain second namespace")
		}
		if strings.Count(msg, "agave:") != 1 {
			t.Errorf("namespace should appear once, got %s", msg)
		}
	})

	t.Run("signature mismatches", func(t *testing.T) {
		err := &MissingImportsError{
			Mismatches: []SignatureMismatch{{
				Namespace: "agave",
				Function:  "get_width",
				Want:      "() -> i32",
				Got:       "() -> i64",
			}},
		}
		msg := err.Error()
		if !strings.Contains(msg, "agave#get_width") || !strings.Contains(msg, "() -> i64") {
			t.Errorf("unexpected message: %s", msg)
		}
	})

	t.Run("empty imports", func(t *testing.T) {
		err := &MissingImportsError{}
		if !err.Empty() {
			t.Error("expected Empty")
		}
		if !strings.Contains(err.Error(), "no imports specified") {
			t.Errorf("empty error should have specific message, got: %s", err.Error())
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		err := &MissingImportsError{Imports: []MissingImport{{Namespace: "ns", Function: "fn"}}}
		if !errors.Is(err, &MissingImportsError{}) {
			t.Error("errors.Is should match MissingImportsError")
		}
	})
}
