package texio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadPNMAsciiGray(t *testing.T) {
	src := []byte("P2\n2 2\n255\n0 128\n255 64\n")
	path := writeTempFile(t, "gray.pgm", src)

	d, err := LoadPNM(path, Options{})
	if err != nil {
		t.Fatalf("LoadPNM: %v", err)
	}
	if d.Width != 2 || d.Height != 2 || d.Channels != 1 {
		t.Fatalf("dims/channels = %dx%d/%d, want 2x2/1", d.Width, d.Height, d.Channels)
	}
	want := []byte{0, 128, 255, 64}
	for i, w := range want {
		if d.Pixels[i] != w {
			t.Errorf("pixel[%d] = %d, want %d", i, d.Pixels[i], w)
		}
	}
}

func TestLoadPNMBinaryColor(t *testing.T) {
	header := "P6\n1 1\n255\n"
	src := append([]byte(header), 10, 20, 30)
	path := writeTempFile(t, "color.ppm", src)

	d, err := LoadPNM(path, Options{})
	if err != nil {
		t.Fatalf("LoadPNM: %v", err)
	}
	if d.Channels != 3 {
		t.Fatalf("channels = %d, want 3", d.Channels)
	}
	want := []byte{10, 20, 30}
	for i, w := range want {
		if d.Pixels[i] != w {
			t.Errorf("pixel[%d] = %d, want %d", i, d.Pixels[i], w)
		}
	}
}

func TestSolidColor(t *testing.T) {
	d := SolidColor(4, 4, 255, 255, 255, 255)
	if d.Width != 4 || d.Height != 4 || d.Channels != 4 {
		t.Fatalf("dims/channels = %dx%d/%d, want 4x4/4", d.Width, d.Height, d.Channels)
	}
	if len(d.Pixels) != 4*4*4 {
		t.Fatalf("pixel buffer len = %d, want %d", len(d.Pixels), 4*4*4)
	}
	for _, p := range d.Pixels {
		if p != 255 {
			t.Errorf("pixel byte = %d, want 255", p)
		}
	}
}

func TestRetargetGrayToRGBA(t *testing.T) {
	d := Data{Pixels: []byte{100}, Width: 1, Height: 1, Channels: 1}
	out, err := retarget(d, 4)
	if err != nil {
		t.Fatalf("retarget: %v", err)
	}
	want := []byte{100, 100, 100, 255}
	for i, w := range want {
		if out.Pixels[i] != w {
			t.Errorf("pixel[%d] = %d, want %d", i, out.Pixels[i], w)
		}
	}
}
