// Package renderr defines the error kinds surfaced by the engine core.
//
// Call sites compare against the sentinels with errors.Is; internal code
// wraps them with fmt.Errorf("...: %w", renderr.NotFound) so a caller can
// still recover the concrete message with Error() while classifying the
// failure with errors.Is.
package renderr

import "errors"

var (
	// NotInitialized is returned when a service is used before initialization.
	NotInitialized = errors.New("not initialized")
	// InvalidArgument is returned for zero sizes, empty paths, unknown
	// attachment names, and invalid descriptor-set indices.
	InvalidArgument = errors.New("invalid argument")
	// NotFound is returned when a binding name or resource id is absent.
	NotFound = errors.New("not found")
	// OutOfRange is returned when an offset/size exceeds a buffer.
	OutOfRange = errors.New("out of range")
	// IncompatibleSchema is returned for structural mismatches on
	// re-registration or descriptor-count mismatches during reflection merge.
	IncompatibleSchema = errors.New("incompatible schema")
	// UnsupportedFormat is returned when a format/feature is not implemented
	// or not supported by the device.
	UnsupportedFormat = errors.New("unsupported format")
	// FileSystem is returned for missing/unreadable files or misaligned
	// SPIR-V blobs.
	FileSystem = errors.New("filesystem error")
	// DeviceError wraps any failure originating from the graphics API.
	DeviceError = errors.New("device error")
)
