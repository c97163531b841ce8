// Package hostfuncs exposes a ResQ session as named JSON handlers. A chat
// transport sends a handler name plus a JSON payload and always receives
// JSON back: either the handler's response or a structured ErrorResponse.
// No failure inside a handler is returned as a Go error or a panic.
package hostfuncs
