/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: server_test.go
Description: Tests for the HTTP service.
*/

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRaw = `uint16_t rawData[37] = {7930, 3952, 494, 1482, 520, 1482, 494, 1508,
494, 520, 494, 1482, 494, 520, 494, 1482, 494, 1482, 494, 3978, 494, 520,
494, 520, 494, 520, 494, 520, 520, 520, 494, 520, 494, 520, 494, 520, 494};`

func newTestServer() *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(Options{Version: "test"}, logger)
}

func post(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAnalyseSample(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/api/v1/analyse", AnalyseRequest{Raw: sampleRaw, Name: "Sample"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 16, got["total_bits"])
	assert.NotEmpty(t, got["id"])
	assert.NotEmpty(t, got["code"], "a name requests a code skeleton")

	anomalies, ok := got["anomalies"].([]interface{})
	require.True(t, ok)
	assert.Len(t, anomalies, 1)
}

func TestAnalyseTimingsList(t *testing.T) {
	s := newTestServer()
	timings := []int{9000, 4500, 560, 560, 560, 1690, 560, 560, 560, 1690, 560}
	rec := post(t, s, "/api/v1/analyse", AnalyseRequest{Timings: timings})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAnalyseErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   interface{}
		status int
		kind   string
	}{
		{"invalid json", "{", http.StatusBadRequest, "malformed_input"},
		{"unknown field", `{"raw":"1,2","bogus":1}`, http.StatusBadRequest, "malformed_input"},
		{"malformed raw", AnalyseRequest{Raw: "{1, -2}"}, http.StatusBadRequest, "malformed_input"},
		{"empty", AnalyseRequest{}, http.StatusBadRequest, "malformed_input"},
		{"too short", AnalyseRequest{Timings: []int{9000, 4500, 560}}, http.StatusUnprocessableEntity, "insufficient_data"},
		{"mark encoded", AnalyseRequest{Timings: []int{9000, 4500, 560, 560, 1690, 560, 560, 560, 1690, 560, 3000}}, http.StatusUnprocessableEntity, "unsupported_encoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			rec := post(t, s, "/api/v1/analyse", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Kind)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestPronto(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/api/v1/pronto", ProntoRequest{Timings: []int{9000, 4500, 560}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ProntoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Code, "0000 006D 0002 0000 "))
	assert.Equal(t, 2, resp.Pairs)
	assert.True(t, resp.Padded)
}

func TestProntoErrors(t *testing.T) {
	s := newTestServer()

	rec := post(t, s, "/api/v1/pronto", ProntoRequest{Raw: "{}"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, s, "/api/v1/pronto", ProntoRequest{Timings: []int{560}, Hertz: -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(t, s, "/api/v1/pronto", ProntoRequest{Timings: []int{560, -560}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed_input")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer()
	post(t, s, "/api/v1/analyse", AnalyseRequest{Raw: sampleRaw})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `irprobe_analysis_total{outcome="success"} 1`)
	assert.Contains(t, body, `irprobe_decoder_anomalies_total{kind="unexpected_header_space"} 1`)
	assert.Contains(t, body, "irprobe_analysis_decoded_bits")
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyse", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServeShutdown(t *testing.T) {
	s := newTestServer()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
