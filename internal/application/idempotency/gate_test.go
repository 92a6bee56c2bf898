package idempotency

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissmart/ledger/internal/domain/entities"
	domainerrors "github.com/nissmart/ledger/internal/domain/errors"
)

// ============================================
// Mock Repository
// ============================================

type mockIdempotencyRepo struct {
	insertFunc    func(ctx context.Context, record *entities.IdempotencyRecord) error
	findByKeyFunc func(ctx context.Context, key string) (*entities.IdempotencyRecord, error)
	updateFunc    func(ctx context.Context, record *entities.IdempotencyRecord) error
}

func (m *mockIdempotencyRepo) Insert(ctx context.Context, record *entities.IdempotencyRecord) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, record)
	}
	return nil
}

func (m *mockIdempotencyRepo) FindByKey(ctx context.Context, key string) (*entities.IdempotencyRecord, error) {
	if m.findByKeyFunc != nil {
		return m.findByKeyFunc(ctx, key)
	}
	return nil, domainerrors.ErrEntityNotFound
}

func (m *mockIdempotencyRepo) Update(ctx context.Context, record *entities.IdempotencyRecord) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, record)
	}
	return nil
}

// ============================================
// ValidateKey
// ============================================

func TestValidateKey(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.ErrorIs(t, ValidateKey(""), domainerrors.ErrMissingIdempotencyKey)
	})

	t.Run("MaxLengthAllowed", func(t *testing.T) {
		assert.NoError(t, ValidateKey(strings.Repeat("k", MaxKeyLength)))
	})

	t.Run("Oversized", func(t *testing.T) {
		err := ValidateKey(strings.Repeat("k", MaxKeyLength+1))

		assert.True(t, domainerrors.IsValidation(err))
	})
}

// ============================================
// Acquire
// ============================================

func TestGate_Acquire_NewKey(t *testing.T) {
	var inserted *entities.IdempotencyRecord
	repo := &mockIdempotencyRepo{
		insertFunc: func(_ context.Context, record *entities.IdempotencyRecord) error {
			inserted = record
			return nil
		},
	}
	gate := NewGate(repo, time.Hour, "worker-1")

	acq, err := gate.Acquire(context.Background(), "key-1", "hash-1")

	require.NoError(t, err)
	assert.False(t, acq.Replay)
	require.NotNil(t, inserted)
	assert.Equal(t, "key-1", inserted.Key())
	assert.Equal(t, "hash-1", inserted.RequestHash())
	require.NotNil(t, inserted.LockedBy())
	assert.Equal(t, "worker-1", *inserted.LockedBy())
}

func TestGate_Acquire_SettledSameHash_Replays(t *testing.T) {
	record := entities.NewIdempotencyRecord("key-1", "hash-1", "worker-1", time.Hour)
	record.Settle(201, []byte(`{"transaction_id":"abc"}`), nil)

	repo := &mockIdempotencyRepo{
		findByKeyFunc: func(_ context.Context, _ string) (*entities.IdempotencyRecord, error) {
			return record, nil
		},
	}
	gate := NewGate(repo, time.Hour, "worker-2")

	acq, err := gate.Acquire(context.Background(), "key-1", "hash-1")

	require.NoError(t, err)
	assert.True(t, acq.Replay)
	require.NotNil(t, acq.Record.ResponseCode())
	assert.Equal(t, 201, *acq.Record.ResponseCode())
	assert.Equal(t, []byte(`{"transaction_id":"abc"}`), acq.Record.ResponseBody())
}

func TestGate_Acquire_SettledDifferentHash_Conflict(t *testing.T) {
	record := entities.NewIdempotencyRecord("key-1", "hash-1", "worker-1", time.Hour)
	record.Settle(201, []byte(`{}`), nil)

	repo := &mockIdempotencyRepo{
		findByKeyFunc: func(_ context.Context, _ string) (*entities.IdempotencyRecord, error) {
			return record, nil
		},
	}
	gate := NewGate(repo, time.Hour, "worker-2")

	_, err := gate.Acquire(context.Background(), "key-1", "hash-other")

	assert.ErrorIs(t, err, domainerrors.ErrIdempotencyConflict)
}

func TestGate_Acquire_ExpiredLock_Reclaims(t *testing.T) {
	// Блокировка с отрицательным TTL истекла сразу
	record := entities.NewIdempotencyRecord("key-1", "hash-old", "worker-dead", -time.Minute)

	var updated *entities.IdempotencyRecord
	repo := &mockIdempotencyRepo{
		findByKeyFunc: func(_ context.Context, _ string) (*entities.IdempotencyRecord, error) {
			return record, nil
		},
		updateFunc: func(_ context.Context, r *entities.IdempotencyRecord) error {
			updated = r
			return nil
		},
	}
	gate := NewGate(repo, time.Hour, "worker-new")

	acq, err := gate.Acquire(context.Background(), "key-1", "hash-new")

	require.NoError(t, err)
	assert.False(t, acq.Replay)
	require.NotNil(t, updated)
	assert.Equal(t, "hash-new", updated.RequestHash())
	require.NotNil(t, updated.LockedBy())
	assert.Equal(t, "worker-new", *updated.LockedBy())
}

func TestGate_Acquire_InFlightSameHash_RefreshesLock(t *testing.T) {
	record := entities.NewIdempotencyRecord("key-1", "hash-1", "worker-1", time.Hour)

	var updated *entities.IdempotencyRecord
	repo := &mockIdempotencyRepo{
		findByKeyFunc: func(_ context.Context, _ string) (*entities.IdempotencyRecord, error) {
			return record, nil
		},
		updateFunc: func(_ context.Context, r *entities.IdempotencyRecord) error {
			updated = r
			return nil
		},
	}
	gate := NewGate(repo, time.Hour, "worker-1")

	acq, err := gate.Acquire(context.Background(), "key-1", "hash-1")

	require.NoError(t, err)
	assert.False(t, acq.Replay)
	require.NotNil(t, updated)
	assert.False(t, updated.IsSettled())
}

func TestGate_Acquire_InFlightDifferentHash_Conflict(t *testing.T) {
	record := entities.NewIdempotencyRecord("key-1", "hash-1", "worker-1", time.Hour)

	repo := &mockIdempotencyRepo{
		findByKeyFunc: func(_ context.Context, _ string) (*entities.IdempotencyRecord, error) {
			return record, nil
		},
	}
	gate := NewGate(repo, time.Hour, "worker-2")

	_, err := gate.Acquire(context.Background(), "key-1", "hash-other")

	assert.ErrorIs(t, err, domainerrors.ErrIdempotencyConflict)
}

func TestGate_Acquire_InsertRace_PropagatesConcurrencyError(t *testing.T) {
	repo := &mockIdempotencyRepo{
		insertFunc: func(_ context.Context, _ *entities.IdempotencyRecord) error {
			return domainerrors.NewConcurrencyError("IdempotencyRecord", "key-1", "duplicate key")
		},
	}
	gate := NewGate(repo, time.Hour, "worker-1")

	_, err := gate.Acquire(context.Background(), "key-1", "hash-1")

	assert.True(t, domainerrors.IsConcurrency(err))
}

func TestNewGate_DefaultTTL(t *testing.T) {
	gate := NewGate(&mockIdempotencyRepo{}, 0, "worker-1")

	assert.Equal(t, DefaultTTL, gate.ttl)
}

// ============================================
// StoreResponse
// ============================================

func TestGate_StoreResponse(t *testing.T) {
	record := entities.NewIdempotencyRecord("key-1", "hash-1", "worker-1", time.Hour)

	var updated *entities.IdempotencyRecord
	repo := &mockIdempotencyRepo{
		updateFunc: func(_ context.Context, r *entities.IdempotencyRecord) error {
			updated = r
			return nil
		},
	}
	gate := NewGate(repo, time.Hour, "worker-1")

	err := gate.StoreResponse(context.Background(), record, 201, []byte(`{"ok":true}`))

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsSettled())
	require.NotNil(t, updated.ResponseCode())
	assert.Equal(t, 201, *updated.ResponseCode())
	assert.Nil(t, updated.LockedBy())
}
