// Package store provides the small key/value repository used for locally
// persisted client state (the cached credential and the notification history).
package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for local record storage. Records are
// grouped into buckets and addressed by key within a bucket.
type Repository interface {
	Put(bucket string, key string, value []byte) error
	Get(bucket string, key string) ([]byte, error)
	Delete(bucket string, key string) error
}
