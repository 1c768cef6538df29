// Package transfer implements the §4.1 transfer engine: one-shot
// copy/blit/barrier submissions with completion tokens and a recycled,
// per-thread staging-buffer pool. It generalizes celer-vkg's
// Queue.SubmitWithFence / Device.WaitForFences into the token-based async
// contract the spec requires.
package transfer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// tokenState is the shared state a Token's clones all reference.
type tokenState struct {
	device    vk.Device
	fence     vk.Fence
	completed atomic.Bool
	refs      atomic.Int32
	mu        sync.Mutex
}

// Token is a lightweight handle to a submitted command list's completion
// state. Tokens are cheap to clone; Wait blocks until the fence signals
// (or times out); IsComplete never blocks.
type Token struct {
	state *tokenState
}

func newToken(device vk.Device, fence vk.Fence) Token {
	st := &tokenState{device: device, fence: fence}
	st.refs.Store(1)
	return Token{state: st}
}

func completedToken() Token {
	st := &tokenState{}
	st.completed.Store(true)
	return Token{state: st}
}

// Clone returns a new reference to the same completion state. The
// submission-tracking loop only recycles a fence once no clone remains
// live, tracked by the embedded refcount.
func (t Token) Clone() Token {
	if t.state != nil {
		t.state.refs.Add(1)
	}
	return t
}

// Release drops this reference to the token's shared state. Submission
// bookkeeping uses this to know when a fence may be recycled.
func (t Token) Release() {
	if t.state != nil {
		t.state.refs.Add(-1)
	}
}

// IsComplete reports whether the underlying fence has signaled, without
// blocking.
func (t Token) IsComplete() bool {
	if t.state == nil || t.state.completed.Load() {
		return true
	}
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	res := vk.GetFenceStatus(t.state.device, t.state.fence)
	if res == vk.Success {
		t.state.completed.Store(true)
		return true
	}
	return false
}

// Wait blocks until the fence signals or timeout elapses. A timeout of 0
// waits forever.
func (t Token) Wait(timeout time.Duration) error {
	if t.state == nil || t.state.completed.Load() {
		return nil
	}
	nanos := uint64(vk.MaxUint64)
	if timeout > 0 {
		nanos = uint64(timeout.Nanoseconds())
	}
	t.state.mu.Lock()
	res := vk.WaitForFences(t.state.device, 1, []vk.Fence{t.state.fence}, vk.True, nanos)
	t.state.mu.Unlock()
	if res == vk.Timeout {
		return fmt.Errorf("transfer: wait timed out")
	}
	if err := vk.Error(res); err != nil {
		return fmt.Errorf("transfer: wait for fence: %w", renderr.DeviceError)
	}
	t.state.completed.Store(true)
	return nil
}

func (t Token) liveRefs() int32 {
	if t.state == nil {
		return 0
	}
	return t.state.refs.Load()
}
