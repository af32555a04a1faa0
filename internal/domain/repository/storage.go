// Package repository defines persistence ports owned by the domain layer.
package repository

import (
	"context"

	"github.com/bnema/lacquer/internal/domain/entity"
)

// SkinRecordStore persists installed and cached skin records keyed by id.
// A missing id is not an error: Get returns (nil, nil).
type SkinRecordStore interface {
	Put(ctx context.Context, record entity.SkinRecord) error
	Get(ctx context.Context, id string) (*entity.SkinRecord, error)
	List(ctx context.Context) ([]entity.SkinRecord, error)
	Delete(ctx context.Context, id string) error
}

// StateStore is a small namespaced key-value store for engine state
// (current selection, font override, catalog cache). A missing key returns
// ("", false, nil), never an error.
type StateStore interface {
	GetValue(ctx context.Context, key string) (value string, ok bool, err error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

// Store combines both persistence surfaces behind one durable medium.
type Store interface {
	SkinRecordStore
	StateStore
	Close() error
}

// State keys. Stable, namespaced; changing one orphans persisted data.
const (
	KeySelectionSkin    = "lacquer.selection.skin"
	KeySelectionMode    = "lacquer.selection.mode"
	KeyFontOverride     = "lacquer.fonts.override"
	KeyCatalogNames     = "lacquer.catalog.names"
	KeyCatalogFetchedAt = "lacquer.catalog.fetched_at"
)
