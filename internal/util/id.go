// Package util holds small helpers shared across the client packages.
package util

import (
	"strconv"
	"time"
)

// TempID synthesizes an identifier for a server event that arrived without
// one, so downstream dedup always has a key to work with.
func TempID() string {
	return "temp_" + strconv.FormatInt(time.Now().UnixNano(), 10)
}
