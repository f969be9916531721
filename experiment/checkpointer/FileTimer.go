package checkpointer

import (
	"fmt"
	"time"
)

// FileTimer returns a function which returns filename suffixed by the
// current Unix time in nanoseconds. Successive names are strictly
// increasing even if the clock has not advanced between calls.
func FileTimer(filename, extension string) func() string {
	var last int64
	return func() string {
		stamp := time.Now().UnixNano()
		if stamp <= last {
			stamp = last + 1
		}
		last = stamp
		return fmt.Sprintf("%v-%v%v", filename, stamp, extension)
	}
}

// Naming determines how checkpoint files are named
type Naming string

const (
	// Enumerated checkpoints are suffixed 1, 2, 3, ...
	Enumerated Naming = "Enumerated"

	// Timestamped checkpoints are suffixed by the time of saving
	Timestamped Naming = "Timestamped"
)

// NewFilenamer returns the function naming checkpoint files with the
// given prefix and extension. An empty Naming enumerates files.
func NewFilenamer(n Naming, prefix, extension string) (func() string,
	error) {
	switch n {
	case Enumerated, "":
		return FilenameEnumerator(0, prefix, extension), nil
	case Timestamped:
		return FileTimer(prefix, extension), nil
	default:
		return nil, fmt.Errorf("newFilenamer: no such naming %q", n)
	}
}
