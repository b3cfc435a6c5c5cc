// Package ctxkeys holds the fiber.Ctx Locals keys shared between the
// upgrade middleware and the WebSocket stream handler.
package ctxkeys

const (
	UserIDKey    = "userID"
	UserEmailKey = "userEmail"
	ParentCtxKey = "parentCtx"
)
