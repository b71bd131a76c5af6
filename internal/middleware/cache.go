package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "sort"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/lunchly/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// ResponseCache stores successful responses of the read endpoints in Redis.
// Keys are "<prefix>:<sha1(method path)>:<sha1(query)>" so every cached
// variant of one path can be evicted with a single SCAN pattern.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
}

// NewResponseCache returns a cache that is inert when cfg.Enabled is false
// or rdb is nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
    if cfg.TTL <= 0 {
        cfg.TTL = 5 * time.Minute
    }
    return &ResponseCache{cfg: cfg, rdb: rdb}
}

func (rc *ResponseCache) active() bool {
    return rc != nil && rc.cfg.Enabled && rc.rdb != nil
}

func pathHash(method, path string) string {
    sum := sha1.Sum([]byte(strings.ToUpper(method) + " " + path))
    return fmt.Sprintf("%x", sum[:])
}

// cacheKey builds a stable key honoring prefix/strategy.  Query parameters
// are sorted so ?a=1&b=2 and ?b=2&a=1 share an entry.
func cacheKey(cfg config.CacheConfig, method, path string, query map[string][]string) string {
    q := ""
    if !strings.EqualFold(cfg.KeyStrategy, "path") && len(query) > 0 {
        keys := make([]string, 0, len(query))
        for k := range query {
            keys = append(keys, k)
        }
        sort.Strings(keys)
        parts := make([]string, 0, len(keys))
        for _, k := range keys {
            parts = append(parts, k+"="+strings.Join(query[k], ","))
        }
        q = strings.Join(parts, "&")
    }
    qsum := sha1.Sum([]byte(q))
    return fmt.Sprintf("%s:%s:%x", cfg.Prefix, pathHash(method, path), qsum[:])
}

func pathPattern(cfg config.CacheConfig, method, path string) string {
    return fmt.Sprintf("%s:%s:*", cfg.Prefix, pathHash(method, path))
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
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
    hdr := make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, hdr, bs[8+hlen:], true
}

// Middleware serves cached responses and records 200 responses on a miss.
// Responses carry X-Cache: HIT or MISS.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
    if !rc.active() {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    cfg := rc.cfg
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            r := c.Request()
            if !cfg.Methods[strings.ToUpper(r.Method)] {
                return next(c)
            }

            ctx := r.Context()
            key := cacheKey(cfg, r.Method, r.URL.Path, r.URL.Query())

            if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            // Truncated bodies are not cached.
            if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                _ = rc.rdb.Set(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err()
            }
            return nil
        }
    }
}

// Invalidate evicts every cached variant of the given paths for all cached
// methods.  It is a no-op when the cache is inactive.
func (rc *ResponseCache) Invalidate(ctx context.Context, paths ...string) error {
    if !rc.active() {
        return nil
    }
    for method := range rc.cfg.Methods {
        for _, p := range paths {
            iter := rc.rdb.Scan(ctx, 0, pathPattern(rc.cfg, method, p), 100).Iterator()
            var keys []string
            for iter.Next(ctx) {
                keys = append(keys, iter.Val())
            }
            if err := iter.Err(); err != nil {
                return err
            }
            if len(keys) > 0 {
                if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
                    return err
                }
            }
        }
    }
    return nil
}
