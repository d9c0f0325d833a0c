// SPDX-License-Identifier: MIT

// Package media implements the editorial lifecycle of a media item: register
// an embed URL, update it, and read it back with its thumbnail.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/ivsgw/internal/embedurl"
	"github.com/ManuGH/ivsgw/internal/log"
	"github.com/ManuGH/ivsgw/internal/mediameta"
	"github.com/ManuGH/ivsgw/internal/store"
)

// Thumbnails is the slice of the thumbnail cache the service needs.
type Thumbnails interface {
	Resolve(ctx context.Context, id string, recorded bool, token string) (string, error)
}

// Service owns media item registration and retrieval.
type Service struct {
	store  store.MediaStore
	thumbs Thumbnails
	logger zerolog.Logger
	now    func() time.Time
}

// Item is a registered media item in validated form.
type Item struct {
	ID        string
	Record    mediameta.Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates the service.
func New(st store.MediaStore, thumbs Thumbnails) *Service {
	return &Service{
		store:  st,
		thumbs: thumbs,
		logger: log.WithComponent("media"),
		now:    time.Now,
	}
}

// Register validates and parses the embed URL, mints a fresh thumbnail
// reference token and persists a new item.
func (s *Service) Register(ctx context.Context, embedURL string) (Item, error) {
	rec, err := recordFromURL(embedURL, "")
	if err != nil {
		return Item{}, err
	}
	item := Item{
		ID:        uuid.NewString(),
		Record:    rec,
		CreatedAt: s.now().UTC(),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.persist(ctx, item); err != nil {
		return Item{}, err
	}
	s.logger.Info().Str("item_id", item.ID).Str("media_id", rec.ID).Bool("recorded", rec.Recorded).Msg("media item registered")
	return item, nil
}

// Update replaces the item's embed URL. The thumbnail reference token is
// carried forward when the source identity is unchanged (preserving cache
// hits) and re-minted when it changed (forcing a thumbnail refresh).
func (s *Service) Update(ctx context.Context, itemID, embedURL string) (Item, error) {
	prev, err := s.Get(ctx, itemID)
	if err != nil {
		return Item{}, err
	}

	carry := ""
	if ref, perr := embedurl.Parse(embedURL); perr == nil && ref == prev.Record.Reference() {
		carry = prev.Record.ThumbnailRef
	}
	rec, err := recordFromURL(embedURL, carry)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		ID:        itemID,
		Record:    rec,
		CreatedAt: prev.CreatedAt,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.persist(ctx, item); err != nil {
		return Item{}, err
	}
	s.logger.Info().Str("item_id", itemID).Bool("token_reminted", carry == "").Msg("media item updated")
	return item, nil
}

// Get loads and validates one item.
func (s *Service) Get(ctx context.Context, itemID string) (Item, error) {
	raw, err := s.store.Get(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	rec, err := mediameta.Deserialize(raw.Value)
	if err != nil {
		return Item{}, fmt.Errorf("item %s: %w", itemID, err)
	}
	return Item{ID: raw.ID, Record: rec, CreatedAt: raw.CreatedAt, UpdatedAt: raw.UpdatedAt}, nil
}

// Delete removes one item.
func (s *Service) Delete(ctx context.Context, itemID string) error {
	return s.store.Delete(ctx, itemID)
}

// List returns all items, newest first. Items whose stored value no longer
// deserializes are skipped with a warning rather than breaking the listing.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	raws, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(raws))
	for _, raw := range raws {
		rec, err := mediameta.Deserialize(raw.Value)
		if err != nil {
			s.logger.Warn().Err(err).Str("item_id", raw.ID).Msg("skipping corrupt media item")
			continue
		}
		items = append(items, Item{ID: raw.ID, Record: rec, CreatedAt: raw.CreatedAt, UpdatedAt: raw.UpdatedAt})
	}
	return items, nil
}

// EmbedURL assembles the canonical embed URL for the item.
func (s *Service) EmbedURL(item Item, scheme string, params *embedurl.Parameters) (string, error) {
	return embedurl.Assemble(item.Record.Reference(), scheme, params)
}

// Thumbnail resolves the item's cached thumbnail path; empty means none.
func (s *Service) Thumbnail(ctx context.Context, item Item) (string, error) {
	return s.thumbs.Resolve(ctx, item.Record.ID, item.Record.Recorded, item.Record.ThumbnailRef)
}

func recordFromURL(embedURL, carryToken string) (mediameta.Record, error) {
	if !embedurl.Valid(embedURL) {
		return mediameta.Record{}, fmt.Errorf("%w: %q", embedurl.ErrInvalidFormat, embedURL)
	}
	ref, err := embedurl.Parse(embedURL)
	if err != nil {
		return mediameta.Record{}, err
	}
	token := carryToken
	if token == "" {
		token = mediameta.NewThumbnailRef()
	}
	return mediameta.Record{ID: ref.ID, Recorded: ref.Recorded, ThumbnailRef: token}, nil
}

func (s *Service) persist(ctx context.Context, item Item) error {
	value, err := mediameta.Serialize(item.Record.Reference(), item.Record.ThumbnailRef)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, store.Item{
		ID:        item.ID,
		Value:     value,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	})
}
