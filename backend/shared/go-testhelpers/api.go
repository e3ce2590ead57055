package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/require"
)

// BuildAuthRequest creates a request carrying a Bearer token when jwtString
// is non-empty.
func (h *TestHelper) BuildAuthRequest(method, reqURL, jwtString string, body []byte) *http.Request {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, reqURL, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if jwtString != "" {
		req.Header.Set("Authorization", "Bearer "+jwtString)
	}
	return req
}

// Serve runs req through handler and returns the recorder.
func (h *TestHelper) Serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// MustJSON marshals v or fails the test.
func (h *TestHelper) MustJSON(v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(h.T, err)
	return b
}

// DecodeJSON unmarshals the recorder body into out.
func (h *TestHelper) DecodeJSON(rec *httptest.ResponseRecorder, out any) {
	require.NoError(h.T, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
}
