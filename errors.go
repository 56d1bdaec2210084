package vkframe

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Kind classifies where in the engine lifecycle an error was raised.
type Kind uint8

const (
	KindUnknown Kind = iota
	// Configuration errors are detected at setup: unsupported extensions or layers,
	// no usable adapter, unreadable or malformed shader artifacts, invalid config.
	Configuration
	// ResourceCreation errors come from a failed vkCreate*/vkAllocate* call.
	ResourceCreation
	// SteadyState errors come from the render loop: acquire, submit or present.
	SteadyState
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case ResourceCreation:
		return "resource creation"
	case SteadyState:
		return "steady state"
	default:
		return "unknown"
	}
}

var (
	ErrNoSuitableDevice   = errors.New("no suitable device")
	ErrNoQueueFamily      = errors.New("no queue family with graphics and present support")
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
)

// ErrImageIndexOutOfRange means acquire returned an image the engine holds no
// frame for. The acquire semaphore is left signalled, so it is never retryable.
var ErrImageIndexOutOfRange = errors.New("acquired image index out of range")

// Error is the typed error returned by every engine stage.
type Error struct {
	Kind     Kind
	Op       string
	Resource string
	// Frame is the frame (swapchain image) index the failure relates to, -1 if none.
	Frame  int
	Result vk.Result
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Op)
	if e.Resource != "" {
		b.WriteString(" ")
		b.WriteString(e.Resource)
	}
	if e.Frame >= 0 {
		fmt.Fprintf(&b, " (frame %d)", e.Frame)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Cause() error { return e.Err }

// Retryable reports whether rebuilding the swapchain can cure the condition.
func (e *Error) Retryable() bool {
	if e.Kind != SteadyState || errors.Is(e.Err, ErrImageIndexOutOfRange) {
		return false
	}
	return retryableResult(e.Result)
}

func retryableResult(ret vk.Result) bool {
	switch ret {
	case vk.ErrorOutOfDate, vk.Suboptimal, vk.Timeout, vk.NotReady:
		return true
	}
	return false
}

func configError(op string, err error) error {
	return &Error{Kind: Configuration, Op: op, Frame: -1, Err: err}
}

func resourceError(resource string, frame int, ret vk.Result) error {
	return &Error{
		Kind:     ResourceCreation,
		Op:       "create",
		Resource: resource,
		Frame:    frame,
		Result:   ret,
		Err:      newError(ret, 2),
	}
}

func steadyError(op string, frame int, ret vk.Result) error {
	return newSteadyError(op, frame, ret, 3)
}

// newSteadyError is steadyError with an explicit runtime.Caller depth for the cause.
func newSteadyError(op string, frame int, ret vk.Result, skip int) error {
	cause := newError(ret, skip)
	if ret == vk.ErrorOutOfDate || ret == vk.Suboptimal {
		cause = errors.Wrap(ErrSwapchainOutOfDate, resultString(ret))
	}
	return &Error{Kind: SteadyState, Op: op, Frame: frame, Result: ret, Err: cause}
}

// KindOf extracts the Kind of err, or KindUnknown if err was not raised by the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a steady-state condition that a swapchain
// rebuild recovers from.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}

// IsFatal is the complement of IsRetryable for non-nil errors.
func IsFatal(err error) bool {
	return err != nil && !IsRetryable(err)
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

func resultString(ret vk.Result) string {
	if err := vk.Error(ret); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("vulkan result %d", ret)
}

// NewError converts a failed vk.Result into an error annotated with the calling function.
func NewError(ret vk.Result) error {
	return newError(ret, 2)
}

// newError is NewError naming the function skip frames up the stack, so that
// constructors can report their caller instead of themselves.
func newError(ret vk.Result, skip int) error {
	if ret == vk.Success {
		return nil
	}
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return errors.Errorf("vulkan error: %s (%d)", resultString(ret), ret)
	}
	return errors.Errorf("vulkan error: %s (%d) on %s", resultString(ret), ret, newStackFrame(pc))
}

type stackFrame struct {
	name string
	file string
	line int
}

func newStackFrame(pc uintptr) stackFrame {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return stackFrame{name: "unknown"}
	}
	file, line := fn.FileLine(pc)
	return stackFrame{name: fn.Name(), file: file, line: line}
}

func (f stackFrame) String() string {
	if f.file == "" {
		return f.name
	}
	return fmt.Sprintf("%s (%s:%d)", f.name, f.file, f.line)
}

// Fatal runs the finalizers, logs err and terminates the process.
func Fatal(logger *slog.Logger, err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	logger.Error("fatal", slog.String("kind", KindOf(err).String()), slog.Any("error", err))
	os.Exit(1)
}
