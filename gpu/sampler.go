package gpu

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// maxLodClampNone mirrors VK_LOD_CLAMP_NONE, which some vulkan-go
// versions don't expose as a named constant.
const maxLodClampNone float32 = 1000.0

// ManagedSampler is an owning handle over a vk.Sampler.
type ManagedSampler struct {
	owner     *Allocator
	handle    vk.Sampler
	DebugName string
	closed    bool
}

func (s *ManagedSampler) Handle() vk.Sampler { return s.handle }

func (s *ManagedSampler) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if s.handle != vk.NullSampler {
		vk.DestroySampler(s.owner.ctx.Device, s.handle, nil)
	}
}

// CreateSampler implements the §4.1 sampler contract: anisotropy is
// enabled iff maxAnisotropy > 1, border color is opaque black, coordinates
// are normalized, and max LOD is unclamped.
func (a *Allocator) CreateSampler(magFilter, minFilter vk.Filter, mipmapMode vk.SamplerMipmapMode,
	addressMode vk.SamplerAddressMode, maxAnisotropy float32, debugName string) (*ManagedSampler, error) {
	if a == nil || a.ctx == nil {
		return nil, fmt.Errorf("gpu: createSampler: %w", renderr.NotInitialized)
	}

	anisotropyEnable := vk.False
	if maxAnisotropy > 1 {
		anisotropyEnable = vk.True
	}

	info := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               magFilter,
		MinFilter:               minFilter,
		MipmapMode:              mipmapMode,
		AddressModeU:            addressMode,
		AddressModeV:            addressMode,
		AddressModeW:            addressMode,
		AnisotropyEnable:        vk.Bool32(anisotropyEnable),
		MaxAnisotropy:           maxAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0,
		MaxLod:                  maxLodClampNone,
	}
	var handle vk.Sampler
	if err := vk.Error(vk.CreateSampler(a.ctx.Device, &info, nil, &handle)); err != nil {
		return nil, fmt.Errorf("gpu: create sampler: %w", renderr.DeviceError)
	}
	return &ManagedSampler{owner: a, handle: handle, DebugName: debugName}, nil
}
