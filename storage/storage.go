// Package storage defines where the previous sample of a rate check is kept.
package storage

import (
	"context"

	"github.com/and161185/pgsql-check/model"
)

// DeltaStore keeps the single most recent sample per identity.
//
// Load returns (nil, nil) when no usable record exists, including when the stored
// record is corrupted. Save overwrites whatever was stored before.
type DeltaStore interface {
	Load(ctx context.Context, id model.Identity) (*model.DeltaRecord, error)
	Save(ctx context.Context, id model.Identity, rec model.DeltaRecord) error
}
