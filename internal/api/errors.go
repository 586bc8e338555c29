package api

import "errors"

var (
	ErrSessionRequired = errors.New("api server requires a session")
)
