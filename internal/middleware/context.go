package middleware

// Keys under which the JWT middleware stores the caller's identity on the
// echo context. Handlers read these instead of re-parsing the token.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)
