// SPDX-License-Identifier: MIT

// Package store persists media items: the opaque item ID and the serialized
// metadata field value. Records are replaced whole on update, never mutated
// in place.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound marks a lookup for an item that does not exist.
var ErrNotFound = errors.New("store: media item not found")

// Item is one registered media item.
type Item struct {
	ID        string    // opaque item identifier (uuid)
	Value     string    // serialized metadata record (mediameta JSON)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MediaStore is the persistence boundary for media items.
type MediaStore interface {
	// Put inserts or fully replaces the item.
	Put(ctx context.Context, item Item) error
	// Get returns the item or ErrNotFound.
	Get(ctx context.Context, id string) (Item, error)
	// Delete removes the item or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns all items, newest first.
	List(ctx context.Context) ([]Item, error)
	// Close releases the backing resources.
	Close() error
}
