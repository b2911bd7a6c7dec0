// Package repository defines the persistent store interface and errors.
package repository

import (
	"context"

	"github.com/user/swordfinder/internal/domain/model"
)

// PatchRecord is one row from the bulk source applied by the patch job.
// Pointer fields fill the matching column only when it is currently NULL.
type PatchRecord struct {
	Key model.PitchKey

	PlateX      *float64
	PlateZ      *float64
	ZoneTop     *float64
	ZoneBottom  *float64
	PitchType   *string
	PitcherName *string
	BatterName  *string
	PlayID      *string
}

// Stats summarizes store contents for monitoring.
type Stats struct {
	PitchEvents      int
	ScoredSwings     int
	CompletedDates   int
	VideosResolved   int
	VideosDownloaded int
	VideoBytes       int64
}

// Store provides durable access to pitch events, scored swings, cached
// result sets and video assets.
type Store interface {
	// PitchEventsForDate returns every pitch event recorded for a date.
	PitchEventsForDate(ctx context.Context, date string) ([]*model.PitchEvent, error)

	// UpsertPitchEvents writes events by natural key, replacing existing
	// rows, and reports how many rows it wrote.
	UpsertPitchEvents(ctx context.Context, events []*model.PitchEvent) (int, error)

	// SetPlayID backfills the external video identifier on a pitch event.
	SetPlayID(ctx context.Context, key model.PitchKey, playID string) error

	// SaveResultSet persists a computed ranking and its completion marker.
	// Scored swings are written idempotently by pitch natural key.
	SaveResultSet(ctx context.Context, set *model.QueryResultSet) error

	// ResultSet loads the cached ranking for a date.
	// Returns ErrNotFound when the date has never been computed.
	ResultSet(ctx context.Context, date string) (*model.QueryResultSet, error)

	// InvalidateResultSet removes a date's cached ranking and swings so the
	// next read recomputes.
	InvalidateResultSet(ctx context.Context, date string) error

	// UpsertVideoAsset writes a video asset keyed by identifier.
	UpsertVideoAsset(ctx context.Context, asset *model.VideoAsset) error

	// VideoAsset loads a video asset by identifier.
	// Returns ErrNotFound when the identifier is unknown.
	VideoAsset(ctx context.Context, identifier string) (*model.VideoAsset, error)

	// ApplyPatch applies fill-if-null updates for a batch of records inside
	// one transaction and reports how many rows changed.
	ApplyPatch(ctx context.Context, batch []PatchRecord) (int, error)

	// Stats returns row counts for monitoring.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the underlying database handle.
	Close() error
}
