// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// diagnosticLen bounds the bytes copied into Error.Line for content
// that never formed a complete line.
const diagnosticLen = 128

// Upgrade is the STARTTLS coroutine. It performs no I/O: every Resume
// either returns the next [Request] the caller must perform, or ends
// the negotiation.
//
// An Upgrade is not safe for concurrent use. Independent negotiations
// use independent Upgrade values and need no locking.
type Upgrade struct {
	opts       options
	logger     log.Logger
	serial     Serial
	state      State
	buf        lineBuffer
	pending    Request
	seq        int
	tag        string
	advertised bool
	err        error
}

// New creates a STARTTLS coroutine in the [Start] state.
func New(opts ...Option) *Upgrade {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := nextSerial()
	return &Upgrade{
		opts:   o,
		serial: s,
		logger: log.With(o.logger, "serial", s, "dialect", o.dialect.Name()),
	}
}

// Resume advances the negotiation with the result of the previously
// returned request; res must be nil on the first call.
//
// It returns (req, nil) while the negotiation is pending, (nil, nil)
// once the transport is ready for the TLS handshake, and (nil, err)
// with err of type *[Error] when the negotiation failed.
//
// Resume panics when called after a terminal result, when res is nil
// while a request is outstanding, when res is non-nil on the first call,
// or when a read result holds more than the requested MaxLen bytes.
func (u *Upgrade) Resume(res *Result) (Request, error) {
	switch {
	case u.state.Terminal():
		panic("starttls: resume after termination")
	case u.state == Start:
		if res != nil {
			panic("starttls: result supplied before any request")
		}
		return u.start()
	case res == nil:
		panic("starttls: resume without the result of the outstanding request")
	}

	if r, ok := u.pending.(Read); ok && len(res.Bytes) > r.MaxLen {
		panic("starttls: read result longer than the requested MaxLen")
	}

	req := u.pending
	u.pending = nil
	if res.Err != nil {
		return u.fail(&Error{Kind: KindTransport, State: u.state, Err: res.Err})
	}

	if _, ok := req.(Write); ok {
		switch u.state {
		case SendProbe:
			u.state = AwaitProbeResponse
		case SendUpgradeCommand:
			u.state = AwaitUpgradeResponse
		}
		return u.scan()
	}

	if len(res.Bytes) == 0 {
		return u.fail(&Error{Kind: KindClosed, State: u.state, Line: u.partial()})
	}
	u.buf.append(res.Bytes)
	return u.scan()
}

// State returns the current negotiation phase.
func (u *Upgrade) State() State {
	return u.state
}

// Err returns the failure of a [Failed] negotiation, nil otherwise.
func (u *Upgrade) Err() error {
	return u.err
}

// Serial returns the serial number assigned to this negotiation.
func (u *Upgrade) Serial() Serial {
	return u.serial
}

// Pending returns the outstanding request, or nil.
func (u *Upgrade) Pending() Request {
	return u.pending
}

// Tag returns the tag of the last issued command, or "" before any.
func (u *Upgrade) Tag() string {
	return u.tag
}

// Advertised reports whether the capability probe listed STARTTLS.
func (u *Upgrade) Advertised() bool {
	return u.advertised
}

// Buffered returns the number of received bytes not yet consumed.
func (u *Upgrade) Buffered() int {
	return u.buf.pending()
}

func (u *Upgrade) start() (Request, error) {
	if u.opts.greeting == greetingConsumed {
		return u.afterGreeting()
	}
	u.state = AwaitGreeting
	return u.scan()
}

// scan consumes complete lines from the buffer until the current phase
// needs more bytes, issues a command, or terminates.
func (u *Upgrade) scan() (Request, error) {
	for {
		line, ok := u.buf.next()
		if !ok {
			if u.buf.pending() > u.opts.maxLine {
				return u.fail(&Error{Kind: KindLineTooLong, State: u.state, Line: u.partial()})
			}
			return u.request(Read{MaxLen: u.opts.chunkSize}), nil
		}
		if len(line) > u.opts.maxLine {
			return u.fail(&Error{Kind: KindLineTooLong, State: u.state, Line: truncate(line)})
		}

		var (
			req Request
			err error
		)
		switch u.state {
		case AwaitGreeting:
			req, err = u.onGreeting(line)
		case AwaitProbeResponse:
			req, err = u.onProbeResponse(line)
		case AwaitUpgradeResponse:
			req, err = u.onUpgradeResponse(line)
		default:
			panic("starttls: line received in state " + u.state.String())
		}
		if req != nil || u.state.Terminal() {
			return req, err
		}
	}
}

func (u *Upgrade) onGreeting(line []byte) (Request, error) {
	v := u.opts.dialect.Greeting(line)
	if u.opts.greeting == greetingDiscard {
		level.Debug(u.logger).Log("msg", "discard greeting line", "line", string(line))
		if v == Continue {
			return nil, nil
		}
		return u.afterGreeting()
	}

	level.Debug(u.logger).Log("msg", "receive greeting line", "line", string(line), "verdict", v)
	switch v {
	case Continue:
		return nil, nil
	case Positive:
		return u.afterGreeting()
	case Negative:
		return u.fail(&Error{Kind: KindRejected, State: u.state, Line: string(line)})
	default:
		return u.fail(&Error{Kind: KindMalformed, State: u.state, Line: string(line)})
	}
}

func (u *Upgrade) afterGreeting() (Request, error) {
	if u.opts.probe {
		return u.send(SendProbe, u.opts.dialect.ProbeCommand)
	}
	return u.send(SendUpgradeCommand, u.opts.dialect.UpgradeCommand)
}

func (u *Upgrade) onProbeResponse(line []byte) (Request, error) {
	if u.opts.dialect.Advertises(line) {
		u.advertised = true
	}
	v := u.opts.dialect.ProbeResponse(u.tag, line)
	level.Debug(u.logger).Log("msg", "receive probe line", "line", string(line), "verdict", v)
	switch v {
	case Continue:
		return nil, nil
	case Positive:
		if u.opts.requireAdvertised && !u.advertised {
			return u.fail(&Error{Kind: KindNotAdvertised, State: u.state, Line: string(line)})
		}
		return u.send(SendUpgradeCommand, u.opts.dialect.UpgradeCommand)
	default:
		return u.reject(v, line)
	}
}

func (u *Upgrade) onUpgradeResponse(line []byte) (Request, error) {
	v := u.opts.dialect.UpgradeResponse(u.tag, line)
	level.Debug(u.logger).Log("msg", "receive upgrade line", "line", string(line), "verdict", v)
	switch v {
	case Continue:
		return nil, nil
	case Positive:
		if u.buf.pending() > 0 {
			return u.fail(&Error{Kind: KindTrailingData, State: u.state, Line: u.partial()})
		}
		u.state = Succeeded
		level.Debug(u.logger).Log("msg", "transport ready for tls handshake")
		return nil, nil
	default:
		return u.reject(v, line)
	}
}

// reject fails the negotiation for a terminating non-positive verdict.
func (u *Upgrade) reject(v Verdict, line []byte) (Request, error) {
	kind := KindMalformed
	switch v {
	case Negative:
		kind = KindRejected
	case Mismatch:
		kind = KindUnexpectedTag
	}
	return u.fail(&Error{Kind: kind, State: u.state, Line: string(line)})
}

// send tags the next command, enters state and emits its Write.
func (u *Upgrade) send(state State, cmd func(tag string) []byte) (Request, error) {
	u.seq++
	u.tag = u.opts.tag + strconv.Itoa(u.seq)
	b := cmd(u.tag)
	u.state = state
	level.Debug(u.logger).Log("msg", "enqueue command", "command", string(b[:len(b)-len(crlf)]), "tag", u.tag)
	return u.request(Write{Bytes: b}), nil
}

func (u *Upgrade) request(req Request) Request {
	u.pending = req
	return req
}

func (u *Upgrade) fail(e *Error) (Request, error) {
	u.state = Failed
	u.err = e
	u.buf.reset()
	level.Debug(u.logger).Log("msg", "negotiation failed", "err", e)
	return nil, e
}

// partial returns the unterminated buffered content for diagnostics.
func (u *Upgrade) partial() string {
	return truncate(u.buf.peek())
}

func truncate(b []byte) string {
	if len(b) > diagnosticLen {
		b = b[:diagnosticLen]
	}
	return string(b)
}
