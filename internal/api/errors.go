package api

import (
	"errors"
	"net/http"

	"github.com/idilsaglam/todo/internal/store"
)

// Messages returned in {"message": ...} error bodies.
const (
	MsgTextRequired = "Text is required"
	MsgNotFound     = "Todo not found"
	MsgInvalidID    = "Invalid id"
	MsgInvalidBody  = "Invalid request body"
	MsgTooLarge     = "Request body too large"
)

// Error is an API failure with the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(msg string, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Err: err}
}

func notFound(err error) *Error {
	return &Error{Status: http.StatusNotFound, Message: MsgNotFound, Err: err}
}

// fromStore maps store sentinels onto API errors.
func fromStore(err error) *Error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound(err)
	case errors.Is(err, store.ErrTextRequired):
		return badRequest(MsgTextRequired, err)
	default:
		return &Error{Status: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError), Err: err}
	}
}
