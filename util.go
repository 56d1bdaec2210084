package vkframe

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// safeString appends the NUL terminator vulkan-go expects on C strings.
func safeString(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

// sliceUint32 reinterprets SPIR-V bytes as words. len(data) must be a multiple of 4.
func sliceUint32(data []byte) []uint32 {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

func clamp[T constraints.Ordered](val, lo, hi T) T {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func dedupe[T comparable](list []T) []T {
	seen := make(map[T]struct{}, len(list))
	out := make([]T, 0, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
