package core

import "errors"

var ErrNotFound = errors.New("backbone: not found")

// ErrPass tells the router the handler declined the request; the next
// matching route, or the NotFound handler, gets it instead.
var ErrPass = errors.New("backbone: pass")

func IsNotFoundError(err error) bool {
	return err != nil && (errors.Is(err, ErrNotFound) || err.Error() == ErrNotFound.Error())
}

func IsPass(err error) bool {
	return errors.Is(err, ErrPass)
}

// StatusError is implemented by errors that know their HTTP status.
type StatusError interface {
	error
	StatusCode() int
}
