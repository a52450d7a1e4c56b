package guestwasm_test

import (
	"context"
	"testing"

	"github.com/wippyai/framehost/input"
	"github.com/wippyai/framehost/internal/guestwasm"
	"github.com/wippyai/framehost/runtime"
)

func TestDemo_MovesBlockWithArrowKeys(t *testing.T) {
	ctx := context.Background()
	var lines []string
	s, err := runtime.New(ctx, runtime.Options{
		Width:  64,
		Height: 48,
		Sink:   func(_ uint32, line string) { lines = append(lines, line) },
	})
	if err != nil {
		t.Fatalf("runtime.New failed: %v", err)
	}
	defer s.Close(ctx)

	if err := s.Load(ctx, guestwasm.Demo()); err != nil {
		t.Fatalf("Load demo: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start demo: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("banner lines = %q", lines)
	}

	readBlock := func() (uint32, uint32) {
		t.Helper()
		x, err := s.Memory().ReadU32(0)
		if err != nil {
			t.Fatalf("read block x: %v", err)
		}
		y, err := s.Memory().ReadU32(4)
		if err != nil {
			t.Fatalf("read block y: %v", err)
		}
		return x, y
	}
	if x, y := readBlock(); x != 32 || y != 24 {
		t.Fatalf("start placed block at (%d, %d), want (32, 24)", x, y)
	}

	s.PressKey(input.KeyDown)
	s.PressKey(input.KeyRight)
	for range 3 {
		if err := s.Tick(ctx); err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
	}
	if x, y := readBlock(); x != 38 || y != 30 {
		t.Errorf("block at (%d, %d) after 3 ticks, want (38, 30)", x, y)
	}

	s.ReleaseKey(input.KeyDown)
	s.ReleaseKey(input.KeyRight)
	s.PressKey(input.KeyUp)
	if err := s.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if x, y := readBlock(); x != 38 || y != 28 {
		t.Errorf("block at (%d, %d) after up, want (38, 28)", x, y)
	}
	if s.Surface().Generation() == 0 {
		t.Error("demo drew nothing")
	}
}
