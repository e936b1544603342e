package auth

import "errors"

// ErrAuthExpired is returned when the pre-flight expiry check rejects a
// request before any network call is issued.
var ErrAuthExpired = errors.New("session expired before request")

// ErrSessionInvalid is returned when the server reports a hard session
// failure (token invalid/missing, session expired, account disabled).
var ErrSessionInvalid = errors.New("session invalid")

// ErrPermissionDenied is returned for soft failures: the session is valid
// but the operation is not authorized for it. The session is untouched.
var ErrPermissionDenied = errors.New("permission denied")
