package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boothsync/internal/survey"
)

func resp(id string) survey.Response {
	return survey.Response{ID: id, NPS: 5}
}

func TestAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.AppendResponse(ctx, resp("a")))
	require.NoError(t, s.AppendResponses(ctx, []survey.Response{resp("b"), resp("c")}))

	got, err := s.ListResponses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[2].ID)
	assert.Equal(t, []string{}, got[0].SelectedProducts)
}

func TestListReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := resp("a")
	r.SelectedProducts = []string{"x"}
	require.NoError(t, s.AppendResponse(ctx, r))

	got, _ := s.ListResponses(ctx)
	got[0].SelectedProducts[0] = "mutated"
	got[0].NPS = 0

	again, _ := s.ListResponses(ctx)
	assert.Equal(t, "x", again[0].SelectedProducts[0])
	assert.Equal(t, 5, again[0].NPS)
}

func TestAppendResponses_AllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.AppendResponse(ctx, resp("a")))

	err := s.AppendResponses(ctx, []survey.Response{resp("b"), resp("a")})
	require.Error(t, err)
	assert.True(t, survey.IsStorage(err))

	err = s.AppendResponses(ctx, []survey.Response{resp("c"), resp("c")})
	require.Error(t, err)

	got, _ := s.ListResponses(ctx)
	assert.Len(t, got, 1)
}

func TestFailWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.FailWrites(errors.New("quota exceeded"))

	err := s.AppendResponse(ctx, resp("a"))
	require.Error(t, err)
	assert.True(t, survey.IsStorage(err))
	assert.True(t, survey.IsStorage(s.PutSetting(ctx, "k", "v")))
	assert.True(t, survey.IsStorage(s.ClearResponses(ctx)))

	s.FailWrites(nil)
	require.NoError(t, s.AppendResponse(ctx, resp("a")))
}

func TestClearAndMarkSynced(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.AppendResponses(ctx, []survey.Response{resp("a"), resp("b")}))

	require.NoError(t, s.MarkSynced(ctx, []string{"b"}))
	got, _ := s.ListResponses(ctx)
	assert.False(t, got[0].IsSynced())
	assert.True(t, got[1].IsSynced())

	require.NoError(t, s.ClearResponses(ctx))
	ids, _ := s.ResponseIDs(ctx)
	assert.Empty(t, ids)
}

func TestSettings(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, ok, _ := s.Setting(ctx, "k")
	assert.False(t, ok)
	require.NoError(t, s.PutSetting(ctx, "k", "v"))
	v, ok, _ := s.Setting(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
