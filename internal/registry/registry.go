// Package registry maps container formats to the code that finds their tag
// region.
package registry

import (
	"io"

	"github.com/simonhull/tagsplice/internal/types"
)

// Locator is the interface all format packages implement.
type Locator interface {
	// Locate returns the region of rs holding the file's tag. A file
	// without a tag yields a zero-length region where one would be inserted.
	Locate(rs io.ReadSeeker, size int64, path string) (types.Region, error)
}

// locators maps formats to their locators.
var locators = make(map[types.Format]Locator)

// Register registers a locator for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, locator Locator) {
	locators[format] = locator
}

// Get returns the locator for a given format.
// Returns nil if no locator is registered for the format.
func Get(format types.Format) Locator {
	return locators[format]
}
