// Package texio loads TextureData from PNG, JPEG, PNM (pbm/pgm/ppm), and
// Radiance HDR files, and builds the engine's default_white primitive.
// celer-vkg's textureutil.go only ever decodes through the stdlib
// image.Decode dispatcher into an RGBA buffer for immediate upload; this
// package generalizes that one path into per-format decoders that each
// produce a TextureData at the caller's requested channel count.
package texio

import "fmt"

// Data is a loaded or generated texture. Channels is one of {1,2,3,4};
// HDR sources carry 32-bit float pixels, scaling ByteSize accordingly.
type Data struct {
	DebugName string
	Pixels    []byte
	Width     int
	Height    int
	Channels  int
	Float     bool
}

// ByteSize returns the size of Pixels implied by Width/Height/Channels
// and whether the payload is float32 or uint8 per channel.
func (d Data) ByteSize() int {
	bpc := 1
	if d.Float {
		bpc = 4
	}
	return d.Width * d.Height * d.Channels * bpc
}

func (d Data) validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("texio: non-positive extent %dx%d", d.Width, d.Height)
	}
	if d.Channels < 1 || d.Channels > 4 {
		return fmt.Errorf("texio: channel count %d outside 1..4", d.Channels)
	}
	return nil
}
