// Package rescache is the central, thread-safe cache of mesh, texture,
// and shader-program resources keyed by normalized absolute path. It
// generalizes celer-vkg's ResourceManager, which only pools raw buffer
// and image allocations with a single mutex-guarded slice and no
// identity/dedup concept, into the id-keyed, load-once, async-coalescing
// cache §4.3 requires.
package rescache

import "path/filepath"

// normalize makes path canonical under platform path rules: absolute,
// cleaned, and using the OS-native separator, so that two different
// spellings of the same file collapse to the same cache id.
func normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
