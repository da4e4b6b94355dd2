//go:build cgo

package storage

import (
	_ "github.com/mattn/go-sqlite3"
)

// sqlDriverName is the database/sql driver name registered for this build.
// CGO builds use mattn/go-sqlite3, matching the teacher's original choice.
const sqlDriverName = "sqlite3"
