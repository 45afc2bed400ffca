package failure

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a grading failure so callers know whether to retry.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUpstream     Kind = "upstream"
	KindDataNotReady Kind = "data_not_ready"
	KindNotFound     Kind = "not_found"
	KindCascade      Kind = "cascade"
)

// Retryable reports whether the same request may succeed later without changes.
func (k Kind) Retryable() bool {
	return k == KindUpstream || k == KindDataNotReady
}

// HTTPStatus maps a kind to the status returned by the operator API.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDataNotReady:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error carries enough context (which entity, which metric) for an operator
// to act on.
type Error struct {
	Kind   Kind
	Op     string
	Entity string
	Metric string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Metric != "" {
		fmt.Fprintf(&b, " (metric=%s", e.Metric)
		if e.Entity != "" {
			fmt.Fprintf(&b, " entity=%s", e.Entity)
		}
		b.WriteString(")")
	} else if e.Entity != "" {
		fmt.Fprintf(&b, " (entity=%s)", e.Entity)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports bad input: missing params or a refused grading mode.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a provider transport or decode failure.
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Msg: "upstream fetch failed", Err: err}
}

// DataNotReady reports a metric or entity absent from fetched data.
func DataNotReady(op, entity string, metric string, msg string) *Error {
	return &Error{Kind: KindDataNotReady, Op: op, Entity: entity, Metric: metric, Msg: msg}
}

// NotFound reports a missing prop, event, pack or matchup.
func NotFound(op, entity string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Entity: entity, Msg: "not found"}
}

// Cascade wraps a failed transactional commit.
func Cascade(op string, err error) *Error {
	return &Error{Kind: KindCascade, Op: op, Msg: "cascade not committed", Err: err}
}

// KindOf extracts the kind from err, or "" when err is not a failure.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err is a failure of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
