package constants

import "time"

// Lower-cased header names used by the canonical model.
const (
	HeaderContentType   = "content-type"
	HeaderForwardedFor  = "x-forwarded-for"
	HeaderRealIP        = "x-real-ip"
	HeaderRequestID     = "x-request-id"
	HeaderCookie        = "cookie"
	HeaderSetCookie     = "set-cookie"
	HeaderContentLength = "content-length"
)

// ContentTypeJSON is the default response content type.
const ContentTypeJSON = "application/json"

// UnknownRemoteAddr is reported when no client address can be determined.
const UnknownRemoteAddr = "0.0.0.0"

// DefaultRequestTimeout is the handler timeout used when none is configured.
const DefaultRequestTimeout = 30 * time.Second

// DefaultMaxBodyBytes is the server adapter body cap (10 MiB).
const DefaultMaxBodyBytes int64 = 10 << 20

// DefaultHost is the server adapter bind host.
const DefaultHost = "0.0.0.0"

// DefaultPort is the server adapter bind port.
const DefaultPort = 3000

// ServerReadHeaderTimeout bounds how long a client may take to send headers.
const ServerReadHeaderTimeout = 15 * time.Second

// ServerIdleTimeout is the HTTP server idle timeout
const ServerIdleTimeout = 60 * time.Second

// ServerShutdownTimeout is the timeout for graceful server shutdown
const ServerShutdownTimeout = 5 * time.Second

// LingeringCloseTimeout bounds how long a rejected connection is drained
// before it is closed.
const LingeringCloseTimeout = 500 * time.Millisecond
