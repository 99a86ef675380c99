package transport

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = "date,opponent,goals,goals conceded\n2024-01-01,Alpha,1,0\n"

func TestGetDecodesContentEncodings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		switch r.URL.Path {
		case "/br":
			bw := brotli.NewWriter(&buf)
			bw.Write([]byte(body))
			bw.Close()
			w.Header().Set("Content-Encoding", "br")
		case "/gzip":
			gw := gzip.NewWriter(&buf)
			gw.Write([]byte(body))
			gw.Close()
			w.Header().Set("Content-Encoding", "gzip")
		case "/plain":
			buf.WriteString(body)
		default:
			http.NotFound(w, r)
			return
		}
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	for _, path := range []string{"/br", "/gzip", "/plain"} {
		t.Run(path, func(t *testing.T) {
			data, err := get(srv.Client(), srv.URL+path)
			require.NoError(t, err)
			assert.Equal(t, body, string(data))
		})
	}

	_, err := get(srv.Client(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestDownloadWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "stats", "Alpha.csv")
	require.NoError(t, Download(srv.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}
