package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Stage is a state of the per-frame cycle.
type Stage uint8

const (
	StageWaitFence Stage = iota
	StageAcquire
	StageRecord
	StageSubmit
	StagePresent
)

func (s Stage) String() string {
	switch s {
	case StageWaitFence:
		return "wait fence"
	case StageAcquire:
		return "acquire"
	case StageRecord:
		return "record"
	case StageSubmit:
		return "submit"
	case StagePresent:
		return "present"
	default:
		return "unknown"
	}
}

// FrameDriver executes the GPU side of each stage. Waits are unbounded.
type FrameDriver interface {
	WaitFence(sync *SyncSet) vk.Result
	ResetFence(sync *SyncSet) vk.Result
	// Acquire returns the next presentable image index, signalling sync.ImageAvailable.
	Acquire(sync *SyncSet) (uint32, vk.Result)
	Record(frame *Frame) vk.Result
	// Submit waits on sync.ImageAvailable, signals sync.RenderFinished and sync.InFlight.
	Submit(frame *Frame, sync *SyncSet) vk.Result
	// Present waits on sync.RenderFinished.
	Present(frame *Frame, sync *SyncSet) vk.Result
}

// Renderer runs the WAIT_FENCE, ACQUIRE, RECORD, SUBMIT, PRESENT cycle.
// Sync sets rotate by frame counter; frames are always picked by the acquired
// image index, which need not cycle in order.
type Renderer struct {
	driver FrameDriver
	syncs  []*SyncSet
	frames []*Frame
	// owners[i] is the sync set whose submission last used frames[i].
	owners  []*SyncSet
	counter uint64
	stage   Stage
	logger  *slog.Logger
	debug   bool
}

func NewRenderer(driver FrameDriver, syncs []*SyncSet, frames []*Frame, logger *slog.Logger, debug bool) (*Renderer, error) {
	if len(syncs) == 0 {
		return nil, configError("new renderer", errors.New("at least one sync set is required"))
	}
	r := &Renderer{
		driver: driver,
		syncs:  syncs,
		logger: logger,
		debug:  debug,
	}
	r.SetFrames(frames)
	return r, nil
}

// SetFrames installs the frames of a rebuilt swapchain. The caller must have
// waited for the device to go idle.
func (r *Renderer) SetFrames(frames []*Frame) {
	r.frames = frames
	r.owners = make([]*SyncSet, len(frames))
}

func (r *Renderer) Stage() Stage { return r.stage }

// FrameCount is the number of frames submitted so far.
func (r *Renderer) FrameCount() uint64 { return r.counter }

func (r *Renderer) current() *SyncSet {
	return r.syncs[r.counter%uint64(len(r.syncs))]
}

// DrawFrame renders one frame. Errors are *Error of kind SteadyState; retryable
// ones ask the caller to rebuild the swapchain.
func (r *Renderer) DrawFrame() error {
	sync := r.current()

	r.stage = StageWaitFence
	if ret := r.driver.WaitFence(sync); isError(ret) {
		return r.fail(-1, ret)
	}

	r.stage = StageAcquire
	index, ret := r.driver.Acquire(sync)
	suboptimal := ret == vk.Suboptimal
	if isError(ret) && !suboptimal {
		// The fence is still signalled so the next wait on this set returns.
		return r.fail(-1, ret)
	}
	if int(index) >= len(r.frames) {
		err := &Error{
			Kind:   SteadyState,
			Op:     r.stage.String(),
			Frame:  int(index),
			Result: ret,
			Err:    errors.Wrapf(ErrImageIndexOutOfRange, "index %d, %d frames", index, len(r.frames)),
		}
		r.logger.Error("frame failed", slog.String("stage", r.stage.String()), slog.Any("error", err))
		return err
	}
	frame := r.frames[index]
	if owner := r.owners[index]; owner != nil && owner != sync {
		if ret := r.driver.WaitFence(owner); isError(ret) {
			return r.fail(int(index), ret)
		}
	}
	r.owners[index] = sync
	if ret := r.driver.ResetFence(sync); isError(ret) {
		return r.fail(int(index), ret)
	}

	r.stage = StageRecord
	if ret := r.driver.Record(frame); isError(ret) {
		return r.fail(int(index), ret)
	}

	r.stage = StageSubmit
	if ret := r.driver.Submit(frame, sync); isError(ret) {
		return r.fail(int(index), ret)
	}

	r.stage = StagePresent
	ret = r.driver.Present(frame, sync)
	r.counter++
	if isError(ret) {
		err := r.fail(int(index), ret)
		r.stage = StageWaitFence
		return err
	}
	r.stage = StageWaitFence
	if suboptimal {
		return steadyError(StageAcquire.String(), int(index), vk.Suboptimal)
	}
	return nil
}

func (r *Renderer) fail(frame int, ret vk.Result) error {
	err := newSteadyError(r.stage.String(), frame, ret, 3)
	switch {
	case IsFatal(err):
		r.logger.Error("frame failed",
			slog.String("stage", r.stage.String()),
			slog.Int("frame", frame),
			slog.Any("error", err))
	case r.debug:
		r.logger.Warn("frame needs swapchain rebuild",
			slog.String("stage", r.stage.String()),
			slog.Int("frame", frame),
			slog.Int("result", int(ret)))
	}
	return err
}
