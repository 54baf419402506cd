// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// Output column names appended to segmented CSV rows. They match the
// column names used by the R hsegment package.
const (
	SegmentIDColumn    = "seg.id"
	SegmentPointColumn = "seg.point"
)
