package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
)

const (
	// IdempotencyKeyHeader carries the client's retry key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the store.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long a finished response is replayed.
	IdempotencyKeyTTL = 5 * time.Minute
)

// IdempotencyConfig configures the Idempotency middleware.
type IdempotencyConfig struct {
	Enabled bool

	store *idempotencyStore
}

// DefaultIdempotencyConfig returns an enabled config with its own store.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Enabled: true,
		store:   newIdempotencyStore(IdempotencyKeyTTL),
	}
}

// Idempotency replays the first successful response of a mutating request
// for the same Idempotency-Key, operator, route and body. A retry that
// arrives while the first request is still running gets 409.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.store == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		fingerprint := requestFingerprint(key, GetOperatorID(c), c.Request)
		stored, busy := cfg.store.claim(fingerprint)
		if busy {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewError(dto.ErrCodeConflict,
				"a request with this Idempotency-Key is still in progress"))
			return
		}
		if stored != nil {
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(stored.status, stored.contentType, stored.body)
			c.Abort()
			return
		}

		recorder := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			cfg.store.complete(fingerprint, nil)
			return
		}
		cfg.store.complete(fingerprint, &replay{
			status:      status,
			contentType: recorder.Header().Get("Content-Type"),
			body:        recorder.body.Bytes(),
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// requestFingerprint hashes the key together with who sent it and what was
// sent, restoring the body for the handler.
func requestFingerprint(key, operatorID string, req *http.Request) string {
	h := sha256.New()
	for _, part := range []string{key, operatorID, req.Method, req.URL.Path} {
		_, _ = io.WriteString(h, part)
		_, _ = h.Write([]byte{0})
	}
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
		_, _ = h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// recordingWriter copies the body while it is written to the client.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
