package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Routes(t *testing.T) {

	s := NewServer("test", ":0").
		Add(Live()).
		AddRoute(GET, Api, "errors", func(r *http.Request) ([]byte, int, error) {
			return Json(map[string]float64{"xor/backprop": 0.05})
		}).
		AddRoute(POST, Api, "fail", func(r *http.Request) ([]byte, int, error) {
			return nil, 0, errors.New("boom")
		})

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	type test struct {
		method string
		path   string
		code   int
	}

	tests := map[string]test{
		"live":         {method: http.MethodGet, path: "/data", code: http.StatusOK},
		"errors":       {method: http.MethodGet, path: "/api/errors", code: http.StatusOK},
		"wrong-method": {method: http.MethodPost, path: "/api/errors", code: http.StatusMethodNotAllowed},
		"failure":      {method: http.MethodPost, path: "/api/fail", code: http.StatusInternalServerError},
		"unknown":      {method: http.MethodGet, path: "/api/unknown", code: http.StatusNotFound},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}

	resp, err := http.Get(srv.URL + "/api/errors")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0.05, body["xor/backprop"])
}
