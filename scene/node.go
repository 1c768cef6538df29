// Package scene is the flat node container of §2 item 8: it owns
// camera/light/renderable components and builds the CameraUBO/LightUBO
// GPU-layout payloads consumed each frame.
package scene

import "github.com/Shanyu-Yun/RenderV2/internal/mathx"

// NodeType selects which optional component a SceneNode carries.
type NodeType int

const (
	NodeCamera NodeType = iota
	NodeLight
	NodeRenderable
)

// Transform is a node's local position/rotation/scale.
type Transform struct {
	Position mathx.Vec3
	Rotation mathx.Quat
	Scale    mathx.Vec3
}

// IdentityTransform returns the neutral transform (origin, no
// rotation, unit scale).
func IdentityTransform() Transform {
	return Transform{Rotation: mathx.IdentityQuat(), Scale: mathx.Vec3{X: 1, Y: 1, Z: 1}}
}

// Matrix builds the local-to-parent matrix T * R * S.
func (t Transform) Matrix() mathx.Mat4 {
	return mathx.Translation(t.Position).Mul(t.Rotation.ToMat4()).Mul(mathx.Scaling(t.Scale))
}

// Renderable binds a node to a mesh and material by cache id.
type Renderable struct {
	MeshID     string
	MaterialID string
}

// SceneNode is one entry in a Scene, per §3: a stable, monotonically
// assigned id and exactly one active component matching Type.
type SceneNode struct {
	ID        uint32
	Type      NodeType
	Transform Transform

	Camera     *Camera
	Light      *Light
	Renderable *Renderable
}
