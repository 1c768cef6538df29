package texio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// Load dispatches to the loader matching path's extension, per §6's
// extension-based texture format detection.
func Load(path string, opts Options) (Data, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return LoadPNG(path, opts)
	case ".jpg", ".jpeg":
		return LoadJPEG(path, opts)
	case ".pnm", ".pbm", ".pgm", ".ppm":
		return LoadPNM(path, opts)
	case ".hdr":
		return LoadHDR(path)
	case ".bmp":
		return LoadBMP(path, opts)
	default:
		return Data{}, fmt.Errorf("texio: unrecognized texture extension %q: %w", ext, renderr.UnsupportedFormat)
	}
}

// DetectFormat sniffs path's header bytes as a secondary check behind
// the extension-based dispatch in Load, catching files whose extension
// lies about their content.
func DetectFormat(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("texio: open %q: %w", path, renderr.FileSystem)
	}
	defer f.Close()

	head := make([]byte, 261)
	n, _ := f.Read(head)
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return "", fmt.Errorf("texio: could not sniff format of %q: %w", path, renderr.UnsupportedFormat)
	}
	return kind.Extension, nil
}

// SolidColor builds a w x h RGBA texture filled with color, the
// primitive default_white is generated from.
func SolidColor(w, h int, r, g, b, a byte) Data {
	pixels := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pixels[i*4+0], pixels[i*4+1], pixels[i*4+2], pixels[i*4+3] = r, g, b, a
	}
	return Data{DebugName: "default_white", Pixels: pixels, Width: w, Height: h, Channels: 4}
}
