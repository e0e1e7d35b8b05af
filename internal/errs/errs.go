// Package errs defines the exchange's error taxonomy. Every error the
// matching core or the HTTP layer can produce carries one of these
// codes so a single middleware can map it to the right status code
// without string matching on messages.
package errs

import "fmt"

// Code identifies the class of failure. It is the taxonomy of spec
// §7, not a wire format.
type Code string

const (
	AuthMissing          Code = "AUTH_MISSING"
	AuthMalformed        Code = "AUTH_MALFORMED"
	AuthUnknown          Code = "AUTH_UNKNOWN"
	Forbidden            Code = "FORBIDDEN"
	NotFound             Code = "NOT_FOUND"
	InstrumentUnknown    Code = "INSTRUMENT_UNKNOWN"
	Validation           Code = "VALIDATION"
	InsufficientFunds    Code = "INSUFFICIENT_FUNDS"
	LiquidityInsufficient Code = "LIQUIDITY_INSUFFICIENT"
	NotCancellable       Code = "NOT_CANCELLABLE"
	InstrumentExists     Code = "INSTRUMENT_EXISTS"
	Internal             Code = "INTERNAL"
)

// E is a coded error. Handlers switch on Code, not on Error() text.
type E struct {
	Code    Code
	Message string
	Cause   error
}

func (e *E) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *E) Unwrap() error { return e.Cause }

// New builds a coded error with a message.
func New(code Code, message string) *E {
	return &E{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *E {
	return &E{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, message string, cause error) *E {
	return &E{Code: code, Message: message, Cause: cause}
}

// As extracts the *E from err, if any.
func As(err error) (*E, bool) {
	e, ok := err.(*E)
	if ok {
		return e, true
	}
	var target *E
	if ok := stdErrorsAs(err, &target); ok {
		return target, true
	}
	return nil, false
}

func stdErrorsAs(err error, target **E) bool {
	for err != nil {
		if e, ok := err.(*E); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// HTTPStatus maps a Code to the status codes of spec §6–§7.
func HTTPStatus(code Code) int {
	switch code {
	case AuthMissing, AuthMalformed:
		return 401
	case AuthUnknown:
		return 404
	case Forbidden:
		return 403
	case NotFound:
		return 404
	case InstrumentUnknown:
		return 422
	case Validation, InsufficientFunds, LiquidityInsufficient, NotCancellable, InstrumentExists:
		return 400
	case Internal:
		return 500
	default:
		return 500
	}
}
