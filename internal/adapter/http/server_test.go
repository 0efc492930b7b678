package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/cell-telemetry-etl/internal/adapter/http"
	"github.com/couchcryptid/cell-telemetry-etl/internal/cellinfo"
	"github.com/couchcryptid/cell-telemetry-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	bridge := cellinfo.NewBridge(observability.NewMetricsForTesting())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, bridge, logger)
}

func invoke(t *testing.T, srv *httpadapter.Server, method, grant, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/cellinfo/"+method, strings.NewReader(body))
	if grant != "" {
		req.Header.Set(httpadapter.PermissionHeader, grant)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGetCellInfo_Success(t *testing.T) {
	srv := newTestServer(nil)
	body := `{"cells":[
		{"type":"lte","registered":false,"ci":1,"tac":1,"mcc_string":"404","mnc_string":"45"},
		{"type":"wcdma","registered":true,"cid":7,"lac":3,"mcc_string":"404","mnc_string":"45"}]}`

	rec := invoke(t, srv, "getCellInfo", "granted", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7,"lac":3,"mcc":"404","mnc":"45"}`, rec.Body.String())
}

func TestGetCellInfo_LegacyCodes(t *testing.T) {
	srv := newTestServer(nil)
	body := `{"cells":[{"type":"gsm","registered":true,"cid":501,"lac":12,"mcc":310,"mnc":26}]}`

	rec := invoke(t, srv, "getCellInfo", "GRANTED", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":501,"lac":12,"mcc":"310","mnc":"26"}`, rec.Body.String())
}

func TestGetCellInfo_IncompleteNeighborIgnored(t *testing.T) {
	srv := newTestServer(nil)
	body := `{"cells":[
		{"type":"gsm","registered":true,"cid":501,"lac":12,"mcc_string":"310","mnc_string":"260"},
		{"type":"lte","registered":false,"tac":7}]}`

	rec := invoke(t, srv, "getCellInfo", "granted", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":501,"lac":12,"mcc":"310","mnc":"260"}`, rec.Body.String())
}

func TestGetCellInfo_Errors(t *testing.T) {
	validBody := `{"cells":[{"type":"gsm","registered":true,"cid":501,"lac":12,"mcc_string":"310","mnc_string":"260"}]}`

	tests := []struct {
		name         string
		method       string
		grant        string
		body         string
		expectedCode string
		status       int
	}{
		{"missing grant", "getCellInfo", "", validBody, "PERMISSION_DENIED", http.StatusForbidden},
		{"denied grant", "getCellInfo", "denied", validBody, "PERMISSION_DENIED", http.StatusForbidden},
		{"denied grant with bad body", "getCellInfo", "", "not json", "PERMISSION_DENIED", http.StatusForbidden},
		{"no cells", "getCellInfo", "granted", `{"cells":[]}`, "UNAVAILABLE", http.StatusNotFound},
		{"empty body", "getCellInfo", "granted", "", "UNAVAILABLE", http.StatusNotFound},
		{"unsupported technology", "getCellInfo", "granted", `{"cells":[{"type":"nr","registered":true}]}`, "UNSUPPORTED_TECHNOLOGY", http.StatusUnprocessableEntity},
		{"malformed body", "getCellInfo", "granted", "not json", "INVALID_ARGUMENT", http.StatusBadRequest},
		{"incomplete cell", "getCellInfo", "granted", `{"cells":[{"type":"gsm","cid":1}]}`, "INVALID_ARGUMENT", http.StatusBadRequest},
		{"unknown method", "getNeighbors", "granted", validBody, "NOT_IMPLEMENTED", http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil)
			rec := invoke(t, srv, tt.method, tt.grant, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.expectedCode, body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestGetCellInfo_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/cellinfo/getCellInfo", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
