package enkelrt

import (
	"errors"
	"fmt"

	"github.com/reusee/enkel/enkellang"
)

var (
	ErrName   = errors.New("name error")
	ErrType   = errors.New("type error")
	ErrArity  = errors.New("arity error")
	ErrBounds = errors.New("bounds error")
	ErrMisuse = errors.New("misuse error")
)

type Error struct {
	Kind error
	Msg  string
	Pos  enkellang.Pos
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Msg, e.Pos)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, pos enkellang.Pos, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Pos:  pos,
	}
}

// ErrParse marks lexer and parser failures reported through the error hook.
var ErrParse = enkellang.ErrSyntax
