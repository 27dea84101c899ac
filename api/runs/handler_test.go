package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/manmonths/core/history"
	"github.com/kilianp07/manmonths/core/report"
)

type memStore struct {
	recs []history.RunRecord
	last history.Query
}

func (m *memStore) Append(_ context.Context, r history.RunRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q history.Query) ([]history.RunRecord, error) {
	m.last = q
	var res []history.RunRecord
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func newStore(t *testing.T) *memStore {
	t.Helper()
	store := &memStore{}
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(context.Background(), history.RunRecord{ID: "ok", Source: "a.xlsx", Timestamp: now}))
	require.NoError(t, store.Append(context.Background(), history.RunRecord{
		ID: "short", Source: "b.xlsx", Timestamp: now.Add(time.Hour),
		Summary: report.Report{Unallocated: 2},
	}))
	return store
}

func TestHandler_AuthAndFilters(t *testing.T) {
	store := newStore(t)
	h := NewHandler(store, "secret")

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, Path+"?shortfall=true&start=2024-06-01T00:00:00Z", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var out []history.RunRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "short", out[0].ID)
	assert.True(t, store.last.ShortfallOnly)
	assert.False(t, store.last.Start.IsZero())
}

func TestHandler_SourceFilterWithoutToken(t *testing.T) {
	h := NewHandler(newStore(t), "")
	req := httptest.NewRequest(http.MethodGet, Path+"?source=a.xlsx", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var out []history.RunRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "ok", out[0].ID)
}

func TestHandler_EmptyResultIsArray(t *testing.T) {
	h := NewHandler(&memStore{}, "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, Path, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestHandler_RejectsBadInput(t *testing.T) {
	h := NewHandler(newStore(t), "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, Path+"?start=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, Path+"?shortfall=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
