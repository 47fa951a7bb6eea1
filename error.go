// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"errors"
	"strconv"
)

// Kind is the reason code of a negotiation failure.
type Kind uint8

const (
	// KindMalformed: a server line did not fit the expected grammar.
	KindMalformed Kind = iota + 1
	// KindUnexpectedTag: a tagged completion did not match the command tag.
	KindUnexpectedTag
	// KindRejected: the server answered negatively.
	KindRejected
	// KindClosed: the stream ended while a line was awaited.
	KindClosed
	// KindTransport: the runtime reported a read or write failure.
	KindTransport
	// KindLineTooLong: an unterminated line exceeded the configured limit.
	KindLineTooLong
	// KindNotAdvertised: the capability probe did not list STARTTLS.
	KindNotAdvertised
	// KindTrailingData: bytes followed the positive STARTTLS reply
	// before the TLS handshake started.
	KindTrailingData
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed response"
	case KindUnexpectedTag:
		return "unexpected tag"
	case KindRejected:
		return "rejected by server"
	case KindClosed:
		return "stream closed"
	case KindTransport:
		return "transport failure"
	case KindLineTooLong:
		return "line too long"
	case KindNotAdvertised:
		return "starttls not advertised"
	case KindTrailingData:
		return "trailing data"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is a terminal negotiation failure.
type Error struct {
	// Kind is the failure reason.
	Kind Kind
	// State is the phase in which the failure occurred.
	State State
	// Line is the offending server line or bytes, if any.
	Line string
	// Err is the underlying transport error for KindTransport.
	Err error
}

func (e *Error) Error() string {
	s := "starttls: " + e.State.String() + ": " + e.Kind.String()
	if e.Line != "" {
		s += ": " + strconv.Quote(e.Line)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a target *Error by Kind, so that
// errors.Is(err, &Error{Kind: KindRejected}) selects rejections.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Err == nil && t.Line == ""
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
