// Package material parses the Material JSON schema of §6 into an
// immutable PBRMaterial record, resolving and eagerly loading its
// texture references into a texture cache.
package material

import (
	"strings"

	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
)

// AlphaMode selects how a fragment's alpha value is interpreted.
type AlphaMode int

const (
	Opaque AlphaMode = iota
	Mask
	Blend
)

func (m AlphaMode) String() string {
	switch m {
	case Mask:
		return "Mask"
	case Blend:
		return "Blend"
	default:
		return "Opaque"
	}
}

// parseAlphaMode implements the case-insensitive "opaque|mask|blend,
// anything else yields Opaque" testable property.
func parseAlphaMode(s string) AlphaMode {
	switch strings.ToLower(s) {
	case "mask":
		return Mask
	case "blend":
		return Blend
	default:
		return Opaque
	}
}

// Textures holds resolved texture-cache ids for each PBR channel, empty
// string meaning "not specified".
type Textures struct {
	BaseColor string
	Metallic  string
	Roughness string
	Normal    string
	Occlusion string
	Emissive  string
}

// Factors holds the scalar/vector multipliers applied alongside any
// bound texture.
type Factors struct {
	BaseColor    mathx.Vec4
	Metallic     float32
	Roughness    float32
	Emissive     mathx.Vec3
	NormalScale  float32
}

// Alpha holds alpha-test/blend configuration.
type Alpha struct {
	Mode        AlphaMode
	Cutoff      float32
	DoubleSided bool
}

// Optical holds refraction parameters for transmissive materials.
type Optical struct {
	RefractionIndex float32
}

// PBRMaterial is the immutable, in-memory record produced by Load. It
// is safe to share by value or pointer across draw calls; nothing
// mutates it after construction.
type PBRMaterial struct {
	Name     string
	Domain   string
	Textures Textures
	Factors  Factors
	Alpha    Alpha
	Optical  Optical
}
