package rescache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/descriptor"
	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// ShaderProgram is up to three linked shader stages plus the
// descriptor-set schemas reflected and registered from their bytecode.
type ShaderProgram struct {
	Name           string
	VertexModule   vk.ShaderModule
	FragmentModule vk.ShaderModule
	ComputeModule  vk.ShaderModule
	Schemas        map[uint32]*descriptor.DescriptorSetSchema
}

// HasCompute reports whether this program carries a compute stage.
func (p *ShaderProgram) HasCompute() bool { return p.ComputeModule != nil }

// ShaderCache loads and stores ShaderPrograms, keyed under both the
// normalized directory+name id and the bare name prefix, per §4.3's
// "lookup tries the prefix key first" contract.
type ShaderCache struct {
	device  vk.Device
	layouts *descriptor.LayoutCache

	mu     sync.Mutex
	byID   map[string]*ShaderProgram
	byName map[string]*ShaderProgram
}

// NewShaderCache returns an empty cache bound to device, registering
// layouts against layouts.
func NewShaderCache(device vk.Device, layouts *descriptor.LayoutCache) *ShaderCache {
	return &ShaderCache{
		device:  device,
		layouts: layouts,
		byID:    make(map[string]*ShaderProgram),
		byName:  make(map[string]*ShaderProgram),
	}
}

// Load implements §4.3's loadShader: reads up to three files named
// <name>.{vert,frag,comp}.spv from directory, reflects and merges their
// bytecode, registers the resulting descriptor-set schemas under name,
// and stores the program under both the normalized directory+name id
// and the bare name prefix.
func (sc *ShaderCache) Load(directory, name string, includeCompute bool) (*ShaderProgram, error) {
	id, err := normalize(filepath.Join(directory, name))
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	if p, ok := sc.byName[name]; ok {
		sc.mu.Unlock()
		return p, nil
	}
	if p, ok := sc.byID[id]; ok {
		sc.mu.Unlock()
		return p, nil
	}
	sc.mu.Unlock()

	stages := []struct {
		ext   string
		stage vk.ShaderStageFlagBits
	}{
		{"vert", vk.ShaderStageVertexBit},
		{"frag", vk.ShaderStageFragmentBit},
	}
	if includeCompute {
		stages = append(stages, struct {
			ext   string
			stage vk.ShaderStageFlagBits
		}{"comp", vk.ShaderStageComputeBit})
	}

	codes := make(map[vk.ShaderStageFlagBits][]uint32)
	words := make(map[vk.ShaderStageFlagBits][]uint32)
	found := 0
	for _, s := range stages {
		path := filepath.Join(directory, fmt.Sprintf("%s.%s.spv", name, s.ext))
		data, err := os.ReadFile(path)
		if err != nil {
			if s.ext == "comp" {
				continue
			}
			return nil, fmt.Errorf("rescache: read %s: %w", path, renderr.FileSystem)
		}
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("rescache: %s is not a multiple of 4 bytes: %w", path, renderr.FileSystem)
		}
		w := bytesToWords(data)
		codes[s.stage] = w
		words[s.stage] = w
		found++
	}
	if found == 0 {
		return nil, fmt.Errorf("rescache: no stage files found for %q in %q: %w", name, directory, renderr.FileSystem)
	}

	perSet, err := descriptor.ReflectAndMerge(codes)
	if err != nil {
		return nil, err
	}
	schemas, err := descriptor.RegisterSchemas(sc.layouts, name, perSet)
	if err != nil {
		return nil, err
	}

	program := &ShaderProgram{Name: name, Schemas: schemas}
	created := make([]vk.ShaderModule, 0, len(words))
	for stage, w := range words {
		module, err := createShaderModule(sc.device, w)
		if err != nil {
			for _, m := range created {
				vk.DestroyShaderModule(sc.device, m, nil)
			}
			return nil, err
		}
		created = append(created, module)
		switch stage {
		case vk.ShaderStageVertexBit:
			program.VertexModule = module
		case vk.ShaderStageFragmentBit:
			program.FragmentModule = module
		case vk.ShaderStageComputeBit:
			program.ComputeModule = module
		}
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if p, ok := sc.byName[name]; ok {
		for _, m := range created {
			vk.DestroyShaderModule(sc.device, m, nil)
		}
		return p, nil
	}
	sc.byID[id] = program
	sc.byName[name] = program
	return program, nil
}

// Get resolves a program, trying the bare name prefix first and
// falling back to the normalized id.
func (sc *ShaderCache) Get(nameOrID string) (*ShaderProgram, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if p, ok := sc.byName[nameOrID]; ok {
		return p, true
	}
	p, ok := sc.byID[nameOrID]
	return p, ok
}

func createShaderModule(device vk.Device, words []uint32) (vk.ShaderModule, error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(words) * 4),
		PCode:    words,
	}
	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device, &info, nil, &module)); err != nil {
		return nil, fmt.Errorf("rescache: create shader module: %w", renderr.DeviceError)
	}
	return module, nil
}

// bytesToWords reinterprets a SPIR-V byte blob as its native uint32
// word stream without copying, mirroring the teacher's sliceUint32.
func bytesToWords(data []byte) []uint32 {
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer(&data[0]))[: len(data)/4 : len(data)/4]
}
