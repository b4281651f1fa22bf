package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/cache"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	inProgress        = "PROCESSING"

	// inProgressTTL outlives the slowest handler, including supplier calls.
	inProgressTTL = 2 * time.Minute
)

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// capturingWriter keeps a copy of the body written by the handler.
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a completed request carrying the
// same Idempotency-Key for the same partner. Concurrent duplicates get 409.
// Failed requests release the key so the client can retry. When the store
// itself fails the request is processed without deduplication.
func Idempotency(store cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		idemKey := fmt.Sprintf("idempotency:%d:%s", c.GetInt(PartnerIDKey), key)
		ctx := c.Request.Context()

		val, err := store.Get(ctx, idemKey)
		switch {
		case err == nil && val == inProgress:
			utils.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this Idempotency-Key is still in progress")
			c.Abort()
			return
		case err == nil:
			var prev storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &prev); jsonErr == nil && prev.Status != 0 {
				c.Header("X-Idempotency-Replayed", "true")
				c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
				c.Abort()
				return
			}
			log.Warn().Str("key", idemKey).Msg("Discarding unreadable idempotent response")
			if delErr := store.Delete(ctx, idemKey); delErr != nil {
				log.Warn().Err(delErr).Msg("Idempotency store unavailable, processing without it")
				c.Next()
				return
			}
		case !errors.Is(err, cache.ErrMiss):
			log.Warn().Err(err).Msg("Idempotency store unavailable, processing without it")
			c.Next()
			return
		}

		acquired, err := store.SetNX(ctx, idemKey, inProgress, inProgressTTL)
		if err != nil {
			log.Warn().Err(err).Msg("Idempotency store unavailable, processing without it")
			c.Next()
			return
		}
		if !acquired {
			utils.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this Idempotency-Key is still in progress")
			c.Abort()
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= 200 && status < 300 {
			data, _ := json.Marshal(storedResponse{Status: status, Body: w.body.Bytes()})
			if err := store.Set(ctx, idemKey, string(data), ttl); err != nil {
				log.Warn().Err(err).Msg("Failed to store idempotent response")
			}
			return
		}
		if err := store.Delete(ctx, idemKey); err != nil {
			log.Warn().Err(err).Msg("Failed to release idempotency key")
		}
	}
}
