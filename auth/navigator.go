package auth

// Navigator is the navigation boundary the Manager hands control to after a
// forced logout. In the browser console this is the SPA router; the CLI
// implements it as a banner plus process exit.
type Navigator interface {
	// AtLogin reports whether the user is already on the login surface, in
	// which case a forced logout is a no-op.
	AtLogin() bool
	// ShowLogin presents the login surface with a user-facing reason.
	ShowLogin(reason string)
}
