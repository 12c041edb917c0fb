// Package license maps SPDX identifiers to license records: display name,
// location of the canonical text and location of the cached copy.
// It performs no I/O.
package license

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDataDir returned when data directory for cached license texts is not known
	ErrNoDataDir = errors.New("could not find data directory")

	// ErrEmptyID returned when license identifier is empty
	ErrEmptyID = errors.New("empty license identifier")
)

// InvalidIDErr returned for identifiers which can't be used as a file name
type InvalidIDErr string

func (e InvalidIDErr) Error() string {
	return fmt.Sprintf("invalid license identifier: %q", string(e))
}

// License describes a single license
type License struct {
	// Short is a short name or SPDX identifier
	Short string

	// Long is a longer, more descriptive name
	Long string

	// URL is a location of the license text
	URL string

	// Path is a location of the cached license text. File may not exist.
	Path string
}

func (l *License) String() string {
	if l == nil || (*l == License{}) {
		return "<unknown license>"
	}

	return fmt.Sprintf("License<Short: %s, Long: %s>", l.Short, l.Long)
}

// Overrider adjusts a default license record for identifiers it knows about.
type Overrider interface {
	// Override returns an adjusted license and true if identifier is known.
	// Implementations must not change Short and Path.
	Override(l License) (License, bool)
}
