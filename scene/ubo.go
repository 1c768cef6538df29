package scene

import (
	"math"

	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
)

// MaxLights is the fixed capacity of a LightUBO's light array.
const MaxLights = 16

func putFloat32(dst []byte, off int, f float32) {
	bits := math.Float32bits(f)
	dst[off] = byte(bits)
	dst[off+1] = byte(bits >> 8)
	dst[off+2] = byte(bits >> 16)
	dst[off+3] = byte(bits >> 24)
}

func putUint32(dst []byte, off int, v uint32) {
	dst[off] = byte(v)
	dst[off+1] = byte(v >> 8)
	dst[off+2] = byte(v >> 16)
	dst[off+3] = byte(v >> 24)
}

func putVec3(dst []byte, off int, v mathx.Vec3) {
	putFloat32(dst, off, v.X)
	putFloat32(dst, off+4, v.Y)
	putFloat32(dst, off+8, v.Z)
}

func putMat4(dst []byte, off int, m mathx.Mat4) {
	i := 0
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			putFloat32(dst, off+i*4, m.Cols[c][r])
			i++
		}
	}
}

// CameraUBOSize is the byte size of a packed CameraUBO: view mat4 (64)
// + projection mat4 (64) + viewPosition vec4 (16).
const CameraUBOSize = 64 + 64 + 16

// BuildCameraUBO packs cam's view/projection matrices and eye position
// into the fixed 144-byte CameraUBO layout of §3.
func BuildCameraUBO(cam *Camera) []byte {
	buf := make([]byte, CameraUBOSize)
	putMat4(buf, 0, cam.ViewMatrix())
	putMat4(buf, 64, cam.ProjectionMatrix())
	putVec3(buf, 128, cam.Position)
	putFloat32(buf, 140, 1)
	return buf
}

// gpuLightSize is the packed size of one GPU light entry: three vec4s
// (position+range, direction+type, color+intensity) plus a fourth vec4
// of {innerCone, outerCone, pad, pad}.
const gpuLightSize = 16 * 4

func putGPULight(dst []byte, off int, l *Light) {
	putVec3(dst, off, l.Position)
	putFloat32(dst, off+12, l.Range)
	putVec3(dst, off+16, l.Direction)
	putFloat32(dst, off+28, float32(l.Type))
	putVec3(dst, off+32, l.Color)
	putFloat32(dst, off+44, l.Intensity)
	putFloat32(dst, off+48, l.InnerCone)
	putFloat32(dst, off+52, l.OuterCone)
	// bytes off+56..off+63 are padding, left zero.
}

// LightUBOSize is the byte size of a packed LightUBO: 16 lights of 64
// bytes each, followed by a 16-byte trailer of {count, pad, pad, pad}.
const LightUBOSize = MaxLights*gpuLightSize + 16

// BuildLightUBO packs up to MaxLights lights into the fixed LightUBO
// layout of §3. Lights beyond MaxLights are dropped; count reflects how
// many entries were written.
func BuildLightUBO(lights []*Light) []byte {
	buf := make([]byte, LightUBOSize)
	n := len(lights)
	if n > MaxLights {
		n = MaxLights
	}
	for i := 0; i < n; i++ {
		putGPULight(buf, i*gpuLightSize, lights[i])
	}
	putUint32(buf, MaxLights*gpuLightSize, uint32(n))
	return buf
}
