// Package handlers contains the HTTP handlers for the directory API
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	businessflow "github.com/mostovoy/agency-directory/business_flow"
)

type requestCtxKey string

const cancelFuncKey requestCtxKey = "cancel"

// createRequestContext derives a request-scoped context carrying the request
// id; the cancel func travels with it and fires with the timeout.
func createRequestContext(c fiber.Ctx, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, requestCtxKey(businessflow.RequestIDKey), c.Get("X-Request-ID"))
	return context.WithValue(ctx, cancelFuncKey, cancel)
}
