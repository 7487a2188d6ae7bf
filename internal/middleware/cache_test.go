package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/propconsole/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"items":[]}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"items":[]}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload(append([]byte{0, 0, 0, 200, 0, 0, 1, 0}, '{'))
	assert.False(t, ok)
}

func TestCacheKeyDependsOnGenerationAndQuery(t *testing.T) {
	e := echo.New()
	ctx := func(target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), nil)
		c.SetPath("/v1/leases")
		return c
	}
	a := cacheKey("cache", 1, ctx("/v1/leases"))
	assert.Equal(t, a, cacheKey("cache", 1, ctx("/v1/leases")))
	assert.NotEqual(t, a, cacheKey("cache", 2, ctx("/v1/leases")))
	assert.NotEqual(t, a, cacheKey("cache", 1, ctx("/v1/leases?page=2")))
	assert.Regexp(t, `^cache:g1:[0-9a-f]{40}$`, a)
}

func TestCaptureWriterStopsCopyingPastLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.truncated)
	assert.Equal(t, "abc", cw.buf.String())
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestDisabledCacheIsTransparent(t *testing.T) {
	e := echo.New()
	cache := NewCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)
	h := cache.Invalidate()(cache.Serve()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"items": []string{}})
	}))

	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/clients", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
