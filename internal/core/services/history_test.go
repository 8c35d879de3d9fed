package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

func seedRuns(t *testing.T, store *mockRunStore, ids ...string) {
	t.Helper()
	for i, id := range ids {
		r := domain.NewRunReport(id, id+".json", fixedNow.Add(time.Duration(i)*time.Minute))
		r.Status = domain.RunSuccess
		require.NoError(t, store.Save(context.Background(), r))
	}
}

func TestHistoryService_List(t *testing.T) {
	store := newMockRunStore()
	seedRuns(t, store, "a", "b", "c")
	svc := NewHistoryService(store)

	runs, err := svc.List(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
}

func TestHistoryService_List_NegativeLimit(t *testing.T) {
	svc := NewHistoryService(newMockRunStore())

	_, err := svc.List(context.Background(), -1)

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestHistoryService_Get(t *testing.T) {
	store := newMockRunStore()
	seedRuns(t, store, "a")
	svc := NewHistoryService(store)

	r, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a.json", r.Input)

	_, err = svc.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.Get(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestHistoryService_Delete(t *testing.T) {
	store := newMockRunStore()
	seedRuns(t, store, "a")
	svc := NewHistoryService(store)

	require.NoError(t, svc.Delete(context.Background(), "a"))
	assert.True(t, errors.Is(svc.Delete(context.Background(), "a"), domain.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(context.Background(), ""), domain.ErrInvalidInput))
}
