package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakichain/haki-analytics/internal/shared"
)

func registryServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/documents/icp/records/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRecordsBareArray(t *testing.T) {
	srv := registryServer(t, http.StatusOK, `[
		{"id": 1, "metadataHash": "QmOne", "owner": "ngo-1", "registeredAt": "1700000000000000000"},
		{"id": "2", "registeredAt": "None"}
	]`)

	got, err := NewClient(srv.URL+"/", time.Second).FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].ID)
	require.NotNil(t, got[0].MetadataHash)
	assert.Equal(t, "QmOne", *got[0].MetadataHash)
	assert.Equal(t, "1700000000000000000", got[0].RegisteredAt)

	assert.Equal(t, int64(2), got[1].ID)
	assert.Nil(t, got[1].MetadataHash)
	assert.Nil(t, got[1].Owner)
	assert.Equal(t, "None", got[1].RegisteredAt)
}

func TestFetchRecordsResultsEnvelope(t *testing.T) {
	srv := registryServer(t, http.StatusOK, `{"count": 1, "next": null, "results": [{"id": 9, "owner": "lawyer"}]}`)

	got, err := NewClient(srv.URL, time.Second).FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(9), got[0].ID)
	assert.Equal(t, "", got[0].RegisteredAt)
}

func TestFetchRecordsUnknownShapeIsEmpty(t *testing.T) {
	srv := registryServer(t, http.StatusOK, `{"detail": "ok"}`)

	got, err := NewClient(srv.URL, time.Second).FetchRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchRecordsServerError(t *testing.T) {
	srv := registryServer(t, http.StatusInternalServerError, `{"detail": "boom"}`)

	got, err := NewClient(srv.URL, time.Second).FetchRecords(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, shared.ErrRegistryUnavailable))
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, shared.MsgRegistryFailed, shared.UserMessage(err))
}

func TestFetchRecordsInvalidJSON(t *testing.T) {
	srv := registryServer(t, http.StatusOK, `<html>not json</html>`)

	_, err := NewClient(srv.URL, time.Second).FetchRecords(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrParseFailure))
}

func TestFetchRecordsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 200*time.Millisecond).FetchRecords(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrRegistryUnavailable))
}

func TestFetchRecordsEmptyBaseURL(t *testing.T) {
	_, err := NewClient("  ", 0).FetchRecords(context.Background())
	assert.True(t, errors.Is(err, shared.ErrRegistryUnavailable))
}
