package scene

import "testing"

func TestNodeIDsIncreaseAndActiveCamera(t *testing.T) {
	s := New()
	if s.GetActiveCamera() != nil {
		t.Fatalf("expected no active camera before any is created")
	}

	l := s.AddLight(Light{Type: LightPoint})
	c1 := s.AddCamera(Camera{FovY: 1, Aspect: 1.7, NearClip: 0.1, FarClip: 100})
	c2 := s.AddCamera(Camera{FovY: 1, Aspect: 1.7, NearClip: 0.1, FarClip: 100})

	if l.ID != 1 || c1.ID != 2 || c2.ID != 3 {
		t.Fatalf("ids = %d,%d,%d, want strictly increasing from 1", l.ID, c1.ID, c2.ID)
	}

	active := s.GetActiveCamera()
	if active == nil || active.ID != c1.ID {
		t.Fatalf("active camera = %+v, want first camera %d", active, c1.ID)
	}

	if !s.SetActiveCamera(c2.ID) {
		t.Fatalf("SetActiveCamera(%d) failed", c2.ID)
	}
	if s.GetActiveCamera().ID != c2.ID {
		t.Fatalf("active camera after switch = %d, want %d", s.GetActiveCamera().ID, c2.ID)
	}
}

func TestBuildLightUBOCount(t *testing.T) {
	lights := make([]*Light, 20)
	for i := range lights {
		lights[i] = &Light{Type: LightPoint, Intensity: 1}
	}
	buf := BuildLightUBO(lights)
	if len(buf) != LightUBOSize {
		t.Fatalf("len = %d, want %d", len(buf), LightUBOSize)
	}
	count := uint32(buf[MaxLights*gpuLightSize]) | uint32(buf[MaxLights*gpuLightSize+1])<<8 |
		uint32(buf[MaxLights*gpuLightSize+2])<<16 | uint32(buf[MaxLights*gpuLightSize+3])<<24
	if count != MaxLights {
		t.Fatalf("count = %d, want %d (clamped)", count, MaxLights)
	}
}

func TestBuildCameraUBOSize(t *testing.T) {
	cam := &Camera{FovY: 1, Aspect: 1.0, NearClip: 0.1, FarClip: 10}
	buf := BuildCameraUBO(cam)
	if len(buf) != CameraUBOSize {
		t.Fatalf("len = %d, want %d", len(buf), CameraUBOSize)
	}
}
