package service

import (
	"context"
	"errors"
	"testing"

	"bookline/models"
	"bookline/store"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotPoller_PollOnce_AppliesSnapshot(t *testing.T) {
	mockBackend := new(MockBackendClient)
	st := store.NewStore()
	poller := NewSnapshotPoller(mockBackend, st, 0)

	matches := []*models.Match{
		{ID: "m1", Status: models.MatchStatusLive},
		{ID: "m2", Status: models.MatchStatusUpcoming},
	}
	mockBackend.On("GetCurrentMatches", context.Background()).Return(matches, nil)

	var callback []*models.Match
	poller.OnSnapshot = func(ms []*models.Match) { callback = ms }

	poller.PollOnce(context.Background())

	assert.Len(t, st.Matches(), 2)
	assert.Equal(t, "m1", st.Matches()[0].ID)
	assert.Len(t, callback, 2)
}

func TestSnapshotPoller_PollOnce_FetchFailureLeavesState(t *testing.T) {
	mockBackend := new(MockBackendClient)
	st := store.NewStore()
	st.SetMatches([]*models.Match{{ID: "m1", Status: models.MatchStatusLive}})
	poller := NewSnapshotPoller(mockBackend, st, 0)

	mockBackend.On("GetCurrentMatches", context.Background()).Return(nil, errors.New("timeout"))

	called := false
	poller.OnSnapshot = func([]*models.Match) { called = true }

	poller.PollOnce(context.Background())

	assert.Len(t, st.Matches(), 1)
	assert.False(t, called)
}

func TestSnapshotPoller_PollOnce_DiscardsLateResultAfterCancel(t *testing.T) {
	mockBackend := new(MockBackendClient)
	st := store.NewStore()
	poller := NewSnapshotPoller(mockBackend, st, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockBackend.On("GetCurrentMatches", ctx).Return([]*models.Match{{ID: "m1"}}, nil)

	poller.PollOnce(ctx)

	// The consumer was torn down; the result is discarded
	assert.Empty(t, st.Matches())
}
