package scene

import "github.com/Shanyu-Yun/RenderV2/internal/mathx"

// Camera produces view/projection matrices for a right-handed world
// with clip-space depth range [0,1], per §3.
type Camera struct {
	Position  mathx.Vec3
	Target    mathx.Vec3
	Up        mathx.Vec3
	FovY      float32
	Aspect    float32
	NearClip  float32
	FarClip   float32
}

// ViewMatrix builds the look-at matrix for this camera.
func (c *Camera) ViewMatrix() mathx.Mat4 {
	return mathx.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix builds the perspective matrix for this camera.
func (c *Camera) ProjectionMatrix() mathx.Mat4 {
	return mathx.Perspective(c.FovY, c.Aspect, c.NearClip, c.FarClip)
}
