package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage is the receipt store. S3 implements it in production.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// Metrics receives ledger measurements
type Metrics interface {
	RecordComputation(ctx context.Context, tenantID uuid.UUID, operation string, d time.Duration)
	RecordTransaction(ctx context.Context, txType, method string)
	RecordDuplicates(ctx context.Context, n int)
	RecordCollection(ctx context.Context, method string)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordComputation(context.Context, uuid.UUID, string, time.Duration) {}
func (NopMetrics) RecordTransaction(context.Context, string, string)                   {}
func (NopMetrics) RecordDuplicates(context.Context, int)                               {}
func (NopMetrics) RecordCollection(context.Context, string)                            {}
