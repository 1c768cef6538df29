package scene

import "github.com/Shanyu-Yun/RenderV2/internal/mathx"

// LightType selects a light's falloff model.
type LightType int

const (
	LightPoint LightType = iota
	LightDirectional
	LightSpot
)

// Light is a scene light source, per §3.
type Light struct {
	Type       LightType
	Color      mathx.Vec3
	Intensity  float32
	Direction  mathx.Vec3
	Position   mathx.Vec3
	Range      float32
	InnerCone  float32
	OuterCone  float32
}
