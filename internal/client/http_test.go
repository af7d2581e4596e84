package client

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHTTPClient(t *testing.T) {
	c, err := CreateHTTPClient(Options{})
	require.NoError(t, err)
	assert.NotNil(t, c.Jar)
	assert.Equal(t, timeout, c.Timeout)

	_, err = CreateHTTPClient(Options{ProxyURL: "://bad"})
	assert.Error(t, err)
}

func TestGetRandomHeaders(t *testing.T) {
	h := GetRandomHeaders()
	assert.Contains(t, userAgents, h.Get("User-Agent"))
	assert.Equal(t, "gzip", h.Get("Accept-Encoding"))
}

func TestReadResponseBody(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("<html>求人</html>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(&buf),
	}
	body, err := ReadResponseBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "<html>求人</html>", string(body))

	plain := &http.Response{Header: http.Header{}, Body: io.NopCloser(bytes.NewBufferString("plain"))}
	body, err = ReadResponseBody(plain)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(body))
}
