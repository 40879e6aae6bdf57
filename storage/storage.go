// Package storage contains block storage for linked values.
package storage

import (
	"errors"

	"github.com/ipld/go-ipld-prime/storage"
)

var ErrNotFound = errors.New("block not found")

// Storage is a readable and writable block store keyed by binary link.
type Storage interface {
	storage.ReadableStorage
	storage.WritableStorage
}
