package debug

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFrameTimer(t *testing.T) {
	ft := NewFrameTimer(time.Second)

	for i := 0; i < 9; i++ {
		if ft.Tick(100 * time.Millisecond) {
			t.Fatalf("window closed early at frame %d", i)
		}
	}
	if !ft.Tick(100 * time.Millisecond) {
		t.Fatal("window should close after one second")
	}
	if ft.FPS() < 9.99 || ft.FPS() > 10.01 {
		t.Errorf("FPS = %v, want 10", ft.FPS())
	}
	if ft.FrameTime() != 100*time.Millisecond {
		t.Errorf("FrameTime = %v, want 100ms", ft.FrameTime())
	}

	// The worst frame is tracked per window.
	ft.Tick(300 * time.Millisecond)
	ft.Tick(800 * time.Millisecond)
	if ft.MaxFrame() != 800*time.Millisecond {
		t.Errorf("MaxFrame = %v, want 800ms", ft.MaxFrame())
	}
	ft.Tick(time.Second)
	if ft.MaxFrame() != time.Second {
		t.Errorf("MaxFrame = %v, want 1s", ft.MaxFrame())
	}
}

func TestFrameTimerDefaultWindow(t *testing.T) {
	ft := NewFrameTimer(0)
	if ft.Tick(500 * time.Millisecond) {
		t.Error("zero window should default to one second")
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "test")
	sc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	// 2x2 frame, bottom row red, top row blue in GL order.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	name, err := sc.CaptureFromPixels(pixels, 2, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if filepath.Base(name) != "test_2024-05-01_12-00-00.png" {
		t.Errorf("name = %s", name)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b == 0 {
		t.Error("top row should be blue after the flip")
	}
	if r, _, b, _ := img.At(0, 1).RGBA(); r == 0 || b != 0 {
		t.Error("bottom row should be red after the flip")
	}

	// A second capture in the same second gets a suffix.
	second, err := sc.CaptureFromPixels(pixels, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if second == name {
		t.Error("second capture overwrote the first")
	}
	if sc.Taken() != 2 {
		t.Errorf("Taken = %d, want 2", sc.Taken())
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "test")
	if _, err := sc.CaptureFromPixels(make([]byte, 15), 2, 2); !errors.Is(err, ErrPixelSize) {
		t.Errorf("err = %v, want ErrPixelSize", err)
	}
	if _, err := sc.CaptureFromPixels(nil, 0, 0); !errors.Is(err, ErrPixelSize) {
		t.Errorf("empty frame: err = %v, want ErrPixelSize", err)
	}
}
