package texio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// LoadHDR decodes a Radiance .hdr (RGBE) file into a 32-bit float RGB
// texture, supporting both flat and new-style per-component RLE
// scanlines (the two encodings real .hdr files actually use). No
// decoder for this format exists in the retrieval pack either, so it is
// hand-rolled like the PNM path.
func LoadHDR(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("texio: open %q: %w", path, renderr.FileSystem)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	width, height, err := readHDRHeader(r)
	if err != nil {
		return Data{}, err
	}

	pixels := make([]float32, width*height*3)
	scanline := make([]byte, width*4)
	for y := 0; y < height; y++ {
		if err := readHDRScanline(r, scanline, width); err != nil {
			return Data{}, fmt.Errorf("texio: read HDR scanline %d of %q: %w", y, path, renderr.FileSystem)
		}
		for x := 0; x < width; x++ {
			rr, gg, bb, e := scanline[x*4], scanline[x*4+1], scanline[x*4+2], scanline[x*4+3]
			fr, fg, fb := rgbeToFloat(rr, gg, bb, e)
			i := (y*width + x) * 3
			pixels[i], pixels[i+1], pixels[i+2] = fr, fg, fb
		}
	}

	buf := make([]byte, len(pixels)*4)
	for i, v := range pixels {
		bits := math.Float32bits(v)
		buf[i*4+0] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}

	return Data{DebugName: path, Pixels: buf, Width: width, Height: height, Channels: 3, Float: true}, nil
}

func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	f := float32(math.Ldexp(1.0, int(e)-128-8))
	return float32(r) * f, float32(g) * f, float32(b) * f
}

func readHDRHeader(r *bufio.Reader) (int, int, error) {
	first, err := r.ReadString('\n')
	if err != nil || !strings.HasPrefix(first, "#?") {
		return 0, 0, fmt.Errorf("texio: not a Radiance HDR file: %w", renderr.IncompatibleSchema)
	}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, 0, fmt.Errorf("texio: truncated HDR header: %w", renderr.FileSystem)
		}
		if strings.TrimSpace(line) == "" {
			break
		}
	}
	resLine, err := r.ReadString('\n')
	if err != nil {
		return 0, 0, fmt.Errorf("texio: missing HDR resolution line: %w", renderr.FileSystem)
	}
	fields := strings.Fields(resLine)
	if len(fields) != 4 {
		return 0, 0, fmt.Errorf("texio: malformed HDR resolution line %q: %w", resLine, renderr.FileSystem)
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("texio: malformed HDR height %q: %w", fields[1], renderr.FileSystem)
	}
	width, err := strconv.Atoi(fields[3])
	if err != nil {
		return 0, 0, fmt.Errorf("texio: malformed HDR width %q: %w", fields[3], renderr.FileSystem)
	}
	return width, height, nil
}

func readHDRScanline(r *bufio.Reader, out []byte, width int) error {
	if width < 8 || width > 0x7fff {
		return readFlatScanline(r, out, width)
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return err
	}
	if header[0] != 2 || header[1] != 2 || int(header[2])<<8|int(header[3]) != width {
		// Not new-style RLE: treat the 4 bytes already read as the
		// first pixel of a flat scanline and continue flat.
		copy(out[0:4], header)
		return readFlatScanline(r, out[4:], width-1)
	}

	for c := 0; c < 4; c++ {
		if err := readRLEComponent(r, out, c, width); err != nil {
			return err
		}
	}
	return nil
}

func readFlatScanline(r *bufio.Reader, out []byte, width int) error {
	_, err := io.ReadFull(r, out[:width*4])
	return err
}

func readRLEComponent(r *bufio.Reader, out []byte, component, width int) error {
	x := 0
	for x < width {
		count, err := r.ReadByte()
		if err != nil {
			return err
		}
		if count > 128 {
			// Run of (count-128) repeats of the next byte.
			n := int(count) - 128
			v, err := r.ReadByte()
			if err != nil {
				return err
			}
			for i := 0; i < n && x < width; i++ {
				out[x*4+component] = v
				x++
			}
		} else {
			// Literal run of `count` distinct bytes.
			n := int(count)
			for i := 0; i < n && x < width; i++ {
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				out[x*4+component] = v
				x++
			}
		}
	}
	return nil
}
