// go-utils/context_keys.go

package utils

// ctxKey is unexported to prevent collisions.
type ctxKey string

// CtxKeyActor stores the models.Actor resolved by the auth middleware.
const CtxKeyActor ctxKey = "actor"

// CtxKeyRequestID stores the per-request correlation id.
const CtxKeyRequestID ctxKey = "requestID"
