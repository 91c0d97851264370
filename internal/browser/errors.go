package browser

import "errors"

var (
	// ErrLoginFailed is returned when the portal rejects the credentials or
	// the post-login page still shows the login form.
	ErrLoginFailed = errors.New("browser: login failed, check the credentials")

	// ErrNoSession is returned when an operation that needs an
	// authenticated session runs before Login.
	ErrNoSession = errors.New("browser: no authenticated session")
)
