package transfer

import (
	"github.com/Shanyu-Yun/RenderV2/gpu"
)

// Config mirrors the original TransferManagerConfig defaults.
type Config struct {
	StagingPoolEnabled   bool
	MaxPooledBuffers     int
	MinStagingBufferSize uint64
	MaxStagingBufferSize uint64
}

// DefaultConfig matches the original's staging-pool defaults.
func DefaultConfig() Config {
	return Config{
		StagingPoolEnabled:   true,
		MaxPooledBuffers:     8,
		MinStagingBufferSize: 1 << 20,
		MaxStagingBufferSize: 64 << 20,
	}
}

func clampU64(v, lo, hi uint64) uint64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// stagingEntry is one pooled staging buffer.
type stagingEntry struct {
	buffer *gpu.ManagedBuffer
	inUse  bool
}

// stagingPool is the per-thread pool described in §4.1. It holds no
// mutex: callers are expected to confine one pool to one thread, per the
// §5 per-thread transfer-state model.
type stagingPool struct {
	cfg     Config
	alloc   *gpu.Allocator
	entries []*stagingEntry
}

func newStagingPool(cfg Config, alloc *gpu.Allocator) *stagingPool {
	return &stagingPool{cfg: cfg, alloc: alloc}
}

// acquire returns the index of a staging buffer with capacity >= size,
// reusing a free pooled entry, growing the pool, or allocating a one-shot
// entry if pooling is disabled or the pool is full.
func (p *stagingPool) acquire(size uint64) (int, error) {
	if p.cfg.StagingPoolEnabled {
		for i, e := range p.entries {
			if !e.inUse && e.buffer.Size >= size {
				e.inUse = true
				return i, nil
			}
		}
		if len(p.entries) < p.cfg.MaxPooledBuffers {
			bufSize := clampU64(size, p.cfg.MinStagingBufferSize, p.cfg.MaxStagingBufferSize)
			if bufSize < size {
				bufSize = size
			}
			buf, err := p.alloc.CreateBuffer(bufSize, gpu.BufferUsageStagingSrc, gpu.CpuToGpu, "staging")
			if err != nil {
				return -1, err
			}
			p.entries = append(p.entries, &stagingEntry{buffer: buf, inUse: true})
			return len(p.entries) - 1, nil
		}
	}

	buf, err := p.alloc.CreateBuffer(size, gpu.BufferUsageStagingSrc, gpu.CpuToGpu, "staging-oneshot")
	if err != nil {
		return -1, err
	}
	p.entries = append(p.entries, &stagingEntry{buffer: buf, inUse: true})
	return len(p.entries) - 1, nil
}

func (p *stagingPool) release(index int) {
	if index < 0 || index >= len(p.entries) {
		return
	}
	p.entries[index].inUse = false
}

func (p *stagingPool) buffer(index int) *gpu.ManagedBuffer {
	return p.entries[index].buffer
}

// cleanup shrinks the pool to MaxPooledBuffers by releasing non-in-use
// entries from the tail, matching the §4.1 cleanup contract.
func (p *stagingPool) cleanup() {
	for len(p.entries) > p.cfg.MaxPooledBuffers {
		idx := -1
		for i := len(p.entries) - 1; i >= 0; i-- {
			if !p.entries[i].inUse {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}
		p.entries[idx].buffer.Close()
		p.entries = append(p.entries[:idx], p.entries[idx+1:]...)
	}
}

func (p *stagingPool) destroyAll() {
	for _, e := range p.entries {
		e.buffer.Close()
	}
	p.entries = nil
}
