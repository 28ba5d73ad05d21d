package errs

import (
	stderr "errors"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CodeError is the one error shape the API layer understands. Code doubles as
// the HTTP status; Detail carries operator-facing context and is never sent to
// clients.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) CodeError {
	return CodeError{Code: code, Msg: msg}
}

func (e CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func (e CodeError) WithDetail(detail string) CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// Wrap attaches a stack to the error.
func (e CodeError) Wrap() error {
	return errors.WithStack(e)
}

// WrapMsg attaches a stack plus detail context.
func (e CodeError) WrapMsg(detail string) error {
	return errors.WithStack(e.WithDetail(detail))
}

func (e CodeError) Is(target error) bool {
	var ce CodeError
	if !stderr.As(target, &ce) {
		return false
	}
	return e.Code == ce.Code && e.Msg == ce.Msg
}

// AsCodeError unwraps err down to a CodeError. Anything unclassified comes
// back as ErrInternal with the original message preserved in Detail.
func AsCodeError(err error) CodeError {
	if err == nil {
		return CodeError{}
	}
	var ce CodeError
	if stderr.As(err, &ce) {
		return ce
	}
	return ErrInternal.WithDetail(err.Error())
}

// Wrap adds a stack to an arbitrary error, keeping nil as nil.
func Wrap(err error) error {
	return errors.WithStack(err)
}

// WrapMsg annotates and adds a stack.
func WrapMsg(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
