// Package sizing provides safe size conversions to prevent overflow.
package sizing

import "math"

// ToInt converts a uint64 to int, returning overflowErr if it doesn't fit.
func ToInt(size uint64, overflowErr error) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// ToUint32 converts a uint64 to uint32, returning overflowErr if it doesn't fit.
func ToUint32(size uint64, overflowErr error) (uint32, error) {
	if size > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(size), nil
}
