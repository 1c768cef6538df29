package texio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// LoadPNM decodes a PBM/PGM/PPM (P1-P6) file into an LDR texture. No
// decoder for this format exists anywhere in the retrieval pack, so the
// header/raster parser below is hand-rolled rather than borrowed.
func LoadPNM(path string, opts Options) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("texio: open %q: %w", path, renderr.FileSystem)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic, err := readToken(r)
	if err != nil {
		return Data{}, fmt.Errorf("texio: read PNM magic %q: %w", path, renderr.FileSystem)
	}

	switch magic {
	case "P1", "P2", "P3", "P4", "P5", "P6":
	default:
		return Data{}, fmt.Errorf("texio: unrecognized PNM magic %q: %w", magic, renderr.UnsupportedFormat)
	}

	width, err := readInt(r)
	if err != nil {
		return Data{}, err
	}
	height, err := readInt(r)
	if err != nil {
		return Data{}, err
	}

	maxVal := 1
	if magic != "P1" && magic != "P4" {
		maxVal, err = readInt(r)
		if err != nil {
			return Data{}, err
		}
	}

	channels := 1
	if magic == "P3" || magic == "P6" {
		channels = 3
	}
	binaryEncoded := magic == "P4" || magic == "P5" || magic == "P6"
	bitmap := magic == "P1" || magic == "P4"

	pixels := make([]byte, width*height*channels)
	if binaryEncoded {
		if err := readBinaryRaster(r, pixels, width, height, channels, bitmap, maxVal); err != nil {
			return Data{}, err
		}
	} else {
		if err := readASCIIRaster(r, pixels, width*height*channels, bitmap, maxVal); err != nil {
			return Data{}, err
		}
	}

	d := Data{DebugName: path, Pixels: pixels, Width: width, Height: height, Channels: channels}
	return applyOptions(d, opts)
}

func readToken(r *bufio.Reader) (string, error) {
	var b []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if c == '#' {
			for {
				c, err := r.ReadByte()
				if err != nil || c == '\n' {
					break
				}
			}
			continue
		}
		if isSpace(c) {
			if len(b) > 0 {
				return string(b), nil
			}
			continue
		}
		b = append(b, c)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func readInt(r *bufio.Reader) (int, error) {
	tok, err := readToken(r)
	if err != nil {
		return 0, fmt.Errorf("texio: read PNM header token: %w", renderr.FileSystem)
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("texio: malformed PNM header token %q: %w", tok, renderr.FileSystem)
	}
	return n, nil
}

func readBinaryRaster(r *bufio.Reader, out []byte, width, height, channels int, bitmap bool, maxVal int) error {
	if bitmap {
		rowBytes := (width + 7) / 8
		row := make([]byte, rowBytes)
		for y := 0; y < height; y++ {
			if _, err := io.ReadFull(r, row); err != nil {
				return fmt.Errorf("texio: truncated PBM raster: %w", renderr.FileSystem)
			}
			for x := 0; x < width; x++ {
				bit := (row[x/8] >> (7 - uint(x%8))) & 1
				v := byte(255)
				if bit == 1 {
					v = 0
				}
				out[y*width+x] = v
			}
		}
		return nil
	}
	if maxVal <= 255 {
		if _, err := io.ReadFull(r, out); err != nil {
			return fmt.Errorf("texio: truncated PNM raster: %w", renderr.FileSystem)
		}
		return nil
	}
	// 16-bit samples, big-endian; downsample to 8 bits.
	raw := make([]byte, len(out)*2)
	if _, err := io.ReadFull(r, raw); err != nil {
		return fmt.Errorf("texio: truncated 16-bit PNM raster: %w", renderr.FileSystem)
	}
	for i := range out {
		out[i] = raw[i*2]
	}
	return nil
}

func readASCIIRaster(r *bufio.Reader, out []byte, count int, bitmap bool, maxVal int) error {
	for i := 0; i < count; i++ {
		n, err := readInt(r)
		if err != nil {
			return err
		}
		if bitmap {
			v := byte(255)
			if n == 1 {
				v = 0
			}
			out[i] = v
			continue
		}
		scaled := n * 255 / maxVal
		if scaled > 255 {
			scaled = 255
		}
		out[i] = byte(scaled)
	}
	return nil
}
