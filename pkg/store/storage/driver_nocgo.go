//go:build !cgo

package storage

import (
	_ "modernc.org/sqlite"
)

// sqlDriverName is the database/sql driver name registered for this build.
// CGO-disabled builds (cross-compiling, musl/alpine images without a C
// toolchain) fall back to the pure-Go modernc.org/sqlite driver.
const sqlDriverName = "sqlite"
