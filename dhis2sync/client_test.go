package dhis2sync

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/stretchr/testify/require"
)

func testExportClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.DHIS2Config{
		APIURL:      srv.URL,
		Username:    "admin",
		Password:    "district",
		HTTPTimeout: 5 * time.Second,
	})
}

func TestExportPostsDataValueSetWithBasicAuth(t *testing.T) {
	var gotPath, gotQuery string
	var gotBody Payload
	var authOK bool
	client := testExportClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		user, pass, ok := r.BasicAuth()
		authOK = ok && user == "admin" && pass == "district"
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))

	payload := &Payload{DataValues: []DataValue{
		{DataElement: "E1", Period: "202401", OrgUnit: "School A", Value: "intro"},
	}}
	err := client.Export(context.Background(), payload)

	require.NoError(t, err)
	require.True(t, authOK)
	require.Equal(t, "/api/dataValueSets", gotPath)
	require.Equal(t, "orgUnitIdScheme=name", gotQuery)
	require.Len(t, gotBody.DataValues, 1)
	require.Equal(t, "E1", gotBody.DataValues[0].DataElement)
}

func TestExportNon2xxIsExportError(t *testing.T) {
	client := testExportClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"ERROR"}`, http.StatusConflict)
	}))

	err := client.Export(context.Background(), &Payload{})
	var expErr *ExportError
	require.ErrorAs(t, err, &expErr)
	require.Equal(t, http.StatusConflict, expErr.StatusCode)
	require.Contains(t, expErr.Body, "ERROR")
}

func TestExportNetworkFailureHasNoStatus(t *testing.T) {
	client := NewClient(config.DHIS2Config{
		APIURL:      "http://127.0.0.1:1",
		HTTPTimeout: time.Second,
	})

	err := client.Export(context.Background(), &Payload{})
	var expErr *ExportError
	require.ErrorAs(t, err, &expErr)
	require.Zero(t, expErr.StatusCode)
}
