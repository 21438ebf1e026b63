//go:build !sqlite_cgo

package sqlite

// Pure Go driver, no C toolchain required. This is the default build.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver the store opens.
	DriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
