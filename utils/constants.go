package utils

// SessionCookieName carries the signed session token for browser clients.
const SessionCookieName = "slotbook_session"

// Context keys set by middleware.
const (
	CtxLogger    = "logger"
	CtxRequestID = "requestID"
	CtxSession   = "session"
)
