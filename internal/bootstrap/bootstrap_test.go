package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/agency/backoffice/internal/infrastructure/config"
	"github.com/agency/backoffice/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContainer_CloseReverseOrder(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := &Container{Logger: zap.New(core)}

	var order []string
	for _, name := range []string{"tracer", "database", "redis"} {
		c.onClose(name, func(context.Context) error {
			order = append(order, name)
			if name == "database" {
				return errors.New("pool busy")
			}
			return nil
		})
	}

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database: pool busy")
	assert.Equal(t, []string{"redis", "database", "tracer"}, order)
	assert.Equal(t, 1, logs.FilterMessage("Failed to close resource").Len())

	// closers run once
	require.NoError(t, c.Close(context.Background()))
	assert.Len(t, order, 3)
}

func TestNewObjectStorage_DisabledUsesStub(t *testing.T) {
	objects, err := newObjectStorage(context.Background(), config.StorageConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.StubObjectStorage{}, objects)
}

func TestNewObjectStorage_EnabledRequiresBucket(t *testing.T) {
	_, err := newObjectStorage(context.Background(), config.StorageConfig{Enabled: true}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}
