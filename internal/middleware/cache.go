package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/propconsole/internal/config"
)

// Cache serves JSON GETs from redis.  Keys embed a generation number that
// Invalidate bumps after every successful write, so entries written before
// a mutation are never read again and simply expire.
type Cache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

func NewCache(cfg config.CacheConfig, rdb *redis.Client) *Cache {
	return &Cache{cfg: cfg, rdb: rdb}
}

func (k *Cache) enabled() bool { return k.cfg.Enabled && k.rdb != nil }

func (k *Cache) genKey() string { return k.cfg.Prefix + ":gen" }

func (k *Cache) generation(ctx context.Context) (int64, error) {
	n, err := k.rdb.Get(ctx, k.genKey()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Invalidate bumps the generation after any successful non-GET request.
func (k *Cache) Invalidate() echo.MiddlewareFunc {
	if !k.enabled() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			m := c.Request().Method
			if m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions {
				return err
			}
			if err == nil && c.Response().Status < http.StatusBadRequest {
				if ierr := k.rdb.Incr(context.Background(), k.genKey()).Err(); ierr != nil {
					log.Printf("cache: bump generation failed: %v", ierr)
				}
			}
			return err
		}
	}
}

// Serve answers cacheable requests from redis and stores 200 responses.
// A request whose generation cannot be read bypasses the cache.
func (k *Cache) Serve() echo.MiddlewareFunc {
	if !k.enabled() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !k.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			gen, err := k.generation(ctx)
			if err != nil {
				return next(c)
			}
			key := cacheKey(k.cfg.Prefix, gen, c)

			if bs, err := k.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for name, vals := range hdr {
						if strings.EqualFold(name, "Content-Length") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(name, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(k.cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
				_ = k.rdb.Set(context.Background(), key, payload, k.cfg.TTL).Err()
			}
			return nil
		}
	}
}

// captureWriter copies up to limit bytes of the response body while
// forwarding everything to the client.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.truncated {
		if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
			cw.truncated = true
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey is prefix:g<gen>:sha1(route, query).  Cached routes return the
// same data to every signed-in user, so the caller is not part of the key.
func cacheKey(prefix string, gen int64, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(r.Method + " " + c.Path() + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:g%d:%x", prefix, gen, sum[:])
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}
