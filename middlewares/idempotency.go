package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"facturation-backend/database"
	"facturation-backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxIdempotencyKeyLen = 128

// Idempotency processes Idempotency-Key for mutating HTTP methods. The first
// successful response for a key is stored and replayed for identical retries.
// Reusing a key for a different request, or while the first request is still
// running, is a conflict. Failed attempts free the key.
func Idempotency(store database.IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" || store == nil {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		path := c.OriginalURL() // includes query string
		reqHash := requestHash(method, path, c.Body())

		// ---- Phase 1: read/create "pending"
		existing, created, err := store.Reserve(c.UserContext(), models.IdempotencyKey{
			Key:         key,
			RequestHash: reqHash,
			Method:      method,
			Path:        path,
		})
		if err != nil {
			return err
		}
		if existing.RequestHash != reqHash {
			return database.ErrIdempotencyConflict
		}
		if existing.Completed() {
			// completed response stored: replay it without running the handler
			c.Set("Idempotent-Replayed", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(existing.ResponseStatus).Send(existing.ResponseBody)
		}
		if !created {
			// the first request with this key is still running
			return database.ErrIdempotencyInProgress
		}

		// ---- Phase 2: run the handler; store successes, free the key otherwise
		err = c.Next()
		status := c.Response().StatusCode()
		if err != nil || status < 200 || status >= 300 {
			if rerr := store.Release(c.UserContext(), key); rerr != nil {
				zap.L().Warn("idempotency: could not release key", zap.String("key", key), zap.Error(rerr))
			}
			return err
		}

		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		if err := store.Complete(c.UserContext(), key, status, blob); err != nil {
			// best-effort: don't break the successful response
			zap.L().Warn("idempotency: could not store response", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
}

// requestHash is the sha256 of method|path|body.
func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
