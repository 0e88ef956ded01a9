package metapath

import (
	"errors"
	"fmt"
)

var (
	ErrStatic     = errors.New("static error")
	ErrDynamic    = errors.New("dynamic error")
	ErrType       = errors.New("type error")
	ErrArithmetic = errors.New("arithmetic error")
	ErrDateTime   = errors.New("date/time error")
	ErrArgument   = errors.New("invalid argument")
	ErrArray      = errors.New("array error")
	ErrDocument   = errors.New("document error")
)

const (
	CodeAxisNamespace    = "MPST0010"
	CodeNoFunction       = "MPST0017"
	CodeUnknownType      = "MPST0051"
	CodeContextAbsent    = "MPDY0002"
	CodeUnboundVariable  = "MPDY0008"
	CodeTreatMismatch    = "MPDY0050"
	CodeUnboundPrefix    = "MPST0081"
	CodeTypeMismatch     = "MPTY0004"
	CodeAtomize          = "FOTY0013"
	CodeDivisionByZero   = "FOAR0001"
	CodeOverflow         = "FOAR0002"
	CodeDurationOverflow = "FODT0002"
	CodeIndexOutOfBounds = "FOAY0001"
	CodeNegativeLength   = "FOAY0002"
	CodeInvalidCast      = "FORG0001"
	CodeInvalidURI       = "FORG0002"
	CodeZeroOrOne        = "FORG0003"
	CodeOneOrMore        = "FORG0004"
	CodeExactlyOne       = "FORG0005"
	CodeArgumentType     = "FORG0006"
	CodeDocument         = "FODC0002"
	CodeRegex            = "FORX0002"
)

// Error is the failure raised while building or evaluating an expression.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// HasCode reports whether err, or one of the errors it wraps, carries the
// given code.
func HasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

func newError(kind error, code, msg string, args ...any) error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: msg,
	}
}

func staticError(code, msg string, args ...any) error {
	return newError(ErrStatic, code, msg, args...)
}

func dynamicError(code, msg string, args ...any) error {
	return newError(ErrDynamic, code, msg, args...)
}

func typeError(msg string, args ...any) error {
	return newError(ErrType, CodeTypeMismatch, msg, args...)
}

func arithmeticError(code, msg string, args ...any) error {
	return newError(ErrArithmetic, code, msg, args...)
}

func argumentError(code, msg string, args ...any) error {
	return newError(ErrArgument, code, msg, args...)
}

func contextAbsent() error {
	return dynamicError(CodeContextAbsent, "dynamic context is absent")
}

func divisionByZero() error {
	return arithmeticError(CodeDivisionByZero, "division by zero")
}

func durationOverflow() error {
	return newError(ErrDateTime, CodeDurationOverflow, "duration overflow/underflow")
}

func indexOutOfBounds(index, size int) error {
	return newError(ErrArray, CodeIndexOutOfBounds, "index %d is out of bounds [1, %d]", index, size)
}
