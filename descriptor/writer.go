package descriptor

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// pendingWrite accumulates one binding's queued value(s) before Update
// flushes them in a single vkUpdateDescriptorSets call.
type pendingWrite struct {
	binding DescriptorBindingInfo
	buffers []vk.DescriptorBufferInfo
	images  []vk.DescriptorImageInfo
}

// Writer implements §4.2's begin -> write* -> update by-name writer.
// Call sites never touch binding indices directly; a missing name is a
// hard error, and array writes keep only the last min(N, C) entries.
type Writer struct {
	device vk.Device
	schema *DescriptorSetSchema
	set    vk.DescriptorSet

	pending map[uint32]*pendingWrite
}

// Begin returns a writer bound to schema and set.
func Begin(device vk.Device, schema *DescriptorSetSchema, set vk.DescriptorSet) *Writer {
	return &Writer{device: device, schema: schema, set: set, pending: make(map[uint32]*pendingWrite)}
}

func (w *Writer) findBinding(name string) (DescriptorBindingInfo, error) {
	for _, b := range w.schema.Bindings {
		if b.Name == name {
			return b, nil
		}
	}
	return DescriptorBindingInfo{}, fmt.Errorf("descriptor: no binding named %q in schema %q: %w", name, w.schema.Name, renderr.NotFound)
}

// truncateKeepLast keeps the last min(len(all), c) entries, per §4.2's
// array-write policy.
func truncateKeepLast[T any](all []T, c uint32) []T {
	n := len(all)
	keep := int(c)
	if keep > n {
		keep = n
	}
	return all[n-keep:]
}

// WriteBuffer queues a single-value (or array) buffer write, replacing
// any prior value queued for this binding in the current session.
func (w *Writer) WriteBuffer(name string, infos ...vk.DescriptorBufferInfo) error {
	b, err := w.findBinding(name)
	if err != nil {
		return err
	}
	w.pending[b.Binding] = &pendingWrite{binding: b, buffers: truncateKeepLast(infos, b.DescriptorCount)}
	return nil
}

// WriteImage queues a single-value (or array) image write.
func (w *Writer) WriteImage(name string, infos ...vk.DescriptorImageInfo) error {
	b, err := w.findBinding(name)
	if err != nil {
		return err
	}
	w.pending[b.Binding] = &pendingWrite{binding: b, images: truncateKeepLast(infos, b.DescriptorCount)}
	return nil
}

// bufferResource is satisfied by gpu.ManagedBuffer without importing gpu,
// avoiding a descriptor -> gpu -> descriptor cycle.
type bufferResource interface {
	DescriptorInfo() vk.DescriptorBufferInfo
}

// imageResource is satisfied by gpu.ManagedImage and gpu.ManagedImageView
// via DescriptorInfoAt; callers that already hold a vk.DescriptorImageInfo
// should call WriteImage directly instead.
type imageResource interface {
	DescriptorInfoAt(layout vk.ImageLayout, sampler vk.Sampler) vk.DescriptorImageInfo
}

// WriteBufferResource is the convenience overload for owning buffer
// handles: it synthesizes the whole-buffer range descriptor info.
func (w *Writer) WriteBufferResource(name string, res bufferResource) error {
	return w.WriteBuffer(name, res.DescriptorInfo())
}

// WriteImageResource is the convenience overload for owning image
// handles, with a configurable image layout.
func (w *Writer) WriteImageResource(name string, res imageResource, layout vk.ImageLayout, sampler vk.Sampler) error {
	return w.WriteImage(name, res.DescriptorInfoAt(layout, sampler))
}

// Update flushes all queued writes in one vkUpdateDescriptorSets call
// and clears the writer so it may be reused.
func (w *Writer) Update() {
	if len(w.pending) == 0 {
		return
	}
	writes := make([]vk.WriteDescriptorSet, 0, len(w.pending))
	for _, p := range w.pending {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          w.set,
			DstBinding:      p.binding.Binding,
			DescriptorType:  p.binding.DescriptorType,
			DescriptorCount: uint32(len(p.buffers) + len(p.images)),
		}
		if len(p.buffers) > 0 {
			write.PBufferInfo = p.buffers
		}
		if len(p.images) > 0 {
			write.PImageInfo = p.images
		}
		writes = append(writes, write)
	}
	vk.UpdateDescriptorSets(w.device, uint32(len(writes)), writes, 0, nil)
	w.pending = make(map[uint32]*pendingWrite)
}
