// Package vk is a minimal Vulkan binding covering exactly the entry
// points the vulkan backend records and submits through. It loads the
// driver with goffi and dispatches every call through per-arity call
// interfaces whose arguments are all 8-byte integer-class values
// (handles, pointers, enums, sizes); the one Vulkan entry point this
// backend uses with by-value floats, vkCmdSetDepthBias, gets a dedicated
// interface.
//
// goffi reads each argument FROM the address supplied in the args array,
// so every argument is staged in a local and passed as a pointer to that
// local, including pointer arguments, which are therefore passed as
// pointer-to-pointer.
package vk

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

// Result is VkResult.
type Result int32

// The VkResult values this backend branches on.
const (
	Success            Result = 0
	NotReady           Result = 1
	Timeout            Result = 2
	Incomplete         Result = 5
	ErrorOutOfHost     Result = -1
	ErrorOutOfDevice   Result = -2
	ErrorDeviceLost    Result = -4
	SuboptimalKHR      Result = 1000001003
	ErrorOutOfDateKHR  Result = -1000001004
	ErrorSurfaceLostKHR Result = -1000000000
)

func (r Result) String() string {
	switch r {
	case Success:
		return "VK_SUCCESS"
	case ErrorOutOfHost:
		return "VK_ERROR_OUT_OF_HOST_MEMORY"
	case ErrorOutOfDevice:
		return "VK_ERROR_OUT_OF_DEVICE_MEMORY"
	case ErrorDeviceLost:
		return "VK_ERROR_DEVICE_LOST"
	case SuboptimalKHR:
		return "VK_SUBOPTIMAL_KHR"
	case ErrorOutOfDateKHR:
		return "VK_ERROR_OUT_OF_DATE_KHR"
	case ErrorSurfaceLostKHR:
		return "VK_ERROR_SURFACE_LOST_KHR"
	default:
		return fmt.Sprintf("VkResult(%d)", int32(r))
	}
}

func libraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "vulkan-1.dll"
	case "darwin":
		return "libvulkan.dylib" // MoltenVK
	default:
		return "libvulkan.so.1"
	}
}

// Loader owns the loaded driver library and the proc-address cache for
// one VkInstance/VkDevice pair.
type Loader struct {
	mu       sync.Mutex
	lib      unsafe.Pointer
	getProc  unsafe.Pointer // vkGetInstanceProcAddr
	cifProc  types.CallInterface
	instance uint64
	device   uint64
	procs    map[string]unsafe.Pointer

	cifs     map[int]*types.CallInterface // arity -> all-uint64 cif, uint64 return
	depthCif types.CallInterface          // vkCmdSetDepthBias: (u64, f32, f32, f32) -> void
}

// Load opens the Vulkan driver library and resolves the bootstrap proc.
func Load() (*Loader, error) {
	lib, err := ffi.LoadLibrary(libraryName())
	if err != nil {
		return nil, fmt.Errorf("vk: loading %s: %w", libraryName(), err)
	}
	getProc, err := ffi.GetSymbol(lib, "vkGetInstanceProcAddr")
	if err != nil {
		return nil, fmt.Errorf("vk: vkGetInstanceProcAddr not found: %w", err)
	}

	l := &Loader{
		lib:     lib,
		getProc: getProc,
		procs:   map[string]unsafe.Pointer{},
		cifs:    map[int]*types.CallInterface{},
	}
	if err := ffi.PrepareCallInterface(&l.cifProc, types.DefaultCall,
		types.PointerTypeDescriptor,
		[]*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor},
	); err != nil {
		return nil, fmt.Errorf("vk: preparing proc-address interface: %w", err)
	}
	if err := ffi.PrepareCallInterface(&l.depthCif, types.DefaultCall,
		types.VoidTypeDescriptor,
		[]*types.TypeDescriptor{
			types.UInt64TypeDescriptor,
			types.FloatTypeDescriptor,
			types.FloatTypeDescriptor,
			types.FloatTypeDescriptor,
		},
	); err != nil {
		return nil, fmt.Errorf("vk: preparing depth-bias interface: %w", err)
	}
	return l, nil
}

// SetInstance records the instance used to resolve instance- and
// device-level procs, and flushes the proc cache.
func (l *Loader) SetInstance(instance uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.instance = instance
	l.procs = map[string]unsafe.Pointer{}
}

// SetDevice records the device; device-level procs keep resolving through
// vkGetInstanceProcAddr, which is valid (if one indirection slower) for
// every device created from the instance.
func (l *Loader) SetDevice(device uint64) {
	l.device = device
}

func (l *Loader) proc(name string) (unsafe.Pointer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.procs[name]; ok {
		return p, nil
	}

	cname := make([]byte, len(name)+1)
	copy(cname, name)
	namePtr := unsafe.Pointer(&cname[0])

	var result unsafe.Pointer
	instance := l.instance
	args := [2]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&namePtr)}
	if err := ffi.CallFunction(&l.cifProc, l.getProc, unsafe.Pointer(&result), args[:]); err != nil {
		return nil, fmt.Errorf("vk: resolving %s: %w", name, err)
	}
	if result == nil {
		return nil, fmt.Errorf("vk: driver does not export %s", name)
	}
	l.procs[name] = result
	return result, nil
}

func (l *Loader) cif(arity int) (*types.CallInterface, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.cifs[arity]; ok {
		return c, nil
	}
	argTypes := make([]*types.TypeDescriptor, arity)
	for i := range argTypes {
		argTypes[i] = types.UInt64TypeDescriptor
	}
	c := new(types.CallInterface)
	if err := ffi.PrepareCallInterface(c, types.DefaultCall, types.UInt64TypeDescriptor, argTypes); err != nil {
		return nil, fmt.Errorf("vk: preparing %d-arg interface: %w", arity, err)
	}
	l.cifs[arity] = c
	return c, nil
}

// Call invokes a Vulkan entry point with integer-class arguments and
// returns the raw 64-bit return register (VkResult in the low 32 bits for
// Result-returning functions, garbage for void functions). Pointer
// arguments are passed with Ptr.
func (l *Loader) Call(name string, args ...uint64) (uint64, error) {
	fn, err := l.proc(name)
	if err != nil {
		return 0, err
	}
	c, err := l.cif(len(args))
	if err != nil {
		return 0, err
	}

	// Stage arguments so each args[i] is the address of an 8-byte slot.
	staged := make([]uint64, len(args))
	copy(staged, args)
	argPtrs := make([]unsafe.Pointer, len(args))
	for i := range staged {
		argPtrs[i] = unsafe.Pointer(&staged[i])
	}

	var ret uint64
	if err := ffi.CallFunction(c, fn, unsafe.Pointer(&ret), argPtrs); err != nil {
		return 0, fmt.Errorf("vk: calling %s: %w", name, err)
	}
	runtime.KeepAlive(args)
	return ret, nil
}

// Check invokes a VkResult-returning entry point and folds the result.
func (l *Loader) Check(name string, args ...uint64) (Result, error) {
	ret, err := l.Call(name, args...)
	if err != nil {
		return ErrorDeviceLost, err
	}
	return Result(int32(uint32(ret))), nil
}

// CmdSetDepthBias is the one by-value-float entry point, dispatched
// through its dedicated call interface.
func (l *Loader) CmdSetDepthBias(cb uint64, constantFactor, clamp, slopeFactor float32) error {
	fn, err := l.proc("vkCmdSetDepthBias")
	if err != nil {
		return err
	}
	cf := math.Float32bits(constantFactor)
	cl := math.Float32bits(clamp)
	sf := math.Float32bits(slopeFactor)
	args := [4]unsafe.Pointer{
		unsafe.Pointer(&cb),
		unsafe.Pointer(&cf),
		unsafe.Pointer(&cl),
		unsafe.Pointer(&sf),
	}
	var ret uint64
	return ffi.CallFunction(&l.depthCif, fn, unsafe.Pointer(&ret), args[:])
}

// Ptr converts a Go pointer to a call argument.
func Ptr[T any](p *T) uint64 {
	return uint64(uintptr(unsafe.Pointer(p)))
}

// SlicePtr converts the first element of a non-empty slice to a call
// argument, or 0 for an empty slice.
func SlicePtr[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}

// CString returns a NUL-terminated byte buffer for a Vulkan string
// argument. The buffer must be kept alive across the call.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
