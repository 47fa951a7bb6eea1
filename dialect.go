// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import "bytes"

// Verdict classifies one server line within the reply being awaited.
type Verdict uint8

const (
	// Continue means the line belongs to the reply but does not end it.
	Continue Verdict = iota
	// Positive ends the reply with success.
	Positive
	// Negative ends the reply with a server rejection.
	Negative
	// Malformed means the line does not fit the reply grammar.
	Malformed
	// Mismatch means a tagged completion for a different command.
	Mismatch
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case Continue:
		return "continue"
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	case Malformed:
		return "malformed"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Dialect is the protocol grammar plugged into an [Upgrade].
// The phase sequence (greeting, optional probe, upgrade command,
// upgrade response) is shared; a Dialect supplies the literals and
// line classification for one protocol.
//
// Lines are passed without their terminator. tag is the command tag
// assigned by the Upgrade; untagged protocols ignore it.
// Implementations must be safe for use by concurrent negotiations.
type Dialect interface {
	// Name returns a short protocol name used in logs.
	Name() string
	// Greeting classifies a line of the server greeting.
	Greeting(line []byte) Verdict
	// ProbeCommand returns the capability probe command line.
	ProbeCommand(tag string) []byte
	// ProbeResponse classifies a line of the probe reply.
	ProbeResponse(tag string, line []byte) Verdict
	// Advertises reports whether a probe reply line lists STARTTLS.
	Advertises(line []byte) bool
	// UpgradeCommand returns the STARTTLS command line.
	UpgradeCommand(tag string) []byte
	// UpgradeResponse classifies a line of the STARTTLS reply.
	UpgradeResponse(tag string, line []byte) Verdict
}

var crlf = []byte("\r\n")

// command joins words with spaces and terminates the line with CRLF.
func command(words ...string) []byte {
	n := len(crlf)
	for _, w := range words {
		n += len(w) + 1
	}
	b := make([]byte, 0, n)
	for i, w := range words {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, w...)
	}
	return append(b, crlf...)
}

// cutWord splits line at the first space.
// rest is empty when line holds a single word.
func cutWord(line []byte) (word, rest []byte) {
	word, rest, _ = bytes.Cut(line, []byte{' '})
	return word, rest
}

// hasWordFold reports whether any space-separated word of line
// equals w, ignoring ASCII case.
func hasWordFold(line []byte, w string) bool {
	for _, f := range bytes.Fields(line) {
		if bytes.EqualFold(f, []byte(w)) {
			return true
		}
	}
	return false
}
