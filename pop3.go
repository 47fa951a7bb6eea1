// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import "bytes"

// POP3 is the POP3 dialect (RFC 2595 section 4).
//
//	S: +OK POP3 server ready
//	C: STLS
//	S: +OK Begin TLS negotiation
type POP3 struct{}

// Name returns "pop3".
func (POP3) Name() string { return "pop3" }

// Greeting accepts "+OK".
func (POP3) Greeting(line []byte) Verdict {
	return pop3Status(line)
}

// ProbeCommand returns "CAPA".
func (POP3) ProbeCommand(string) []byte {
	return command("CAPA")
}

// ProbeResponse classifies the CAPA reply: "+OK", the capability
// lines, then a terminating ".".
func (POP3) ProbeResponse(_ string, line []byte) Verdict {
	if bytes.Equal(line, []byte(".")) {
		return Positive
	}
	if v := pop3Status(line); v == Negative {
		return v
	}
	return Continue
}

// Advertises reports whether a CAPA line is the STLS capability.
func (POP3) Advertises(line []byte) bool {
	name, _ := cutWord(line)
	return bytes.EqualFold(name, []byte("STLS"))
}

// UpgradeCommand returns "STLS".
func (POP3) UpgradeCommand(string) []byte {
	return command("STLS")
}

// UpgradeResponse accepts "+OK"; "-ERR" is a rejection.
func (POP3) UpgradeResponse(_ string, line []byte) Verdict {
	return pop3Status(line)
}

func pop3Status(line []byte) Verdict {
	status, _ := cutWord(line)
	switch {
	case bytes.Equal(status, []byte("+OK")):
		return Positive
	case bytes.Equal(status, []byte("-ERR")):
		return Negative
	}
	return Malformed
}
