// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import "bytes"

// IMAP is the IMAP4rev1 dialect (RFC 3501 section 6.2.1).
//
//	S: * OK IMAP4rev1 Service Ready
//	C: a1 STARTTLS
//	S: a1 OK Begin TLS negotiation now
type IMAP struct{}

// Name returns "imap".
func (IMAP) Name() string { return "imap" }

// Greeting accepts "* OK". "* PREAUTH" is a rejection since STARTTLS is
// only valid in the not-authenticated state; "* BYE" is a rejection too.
func (IMAP) Greeting(line []byte) Verdict {
	star, rest := cutWord(line)
	if !bytes.Equal(star, []byte("*")) {
		return Malformed
	}
	status, _ := cutWord(rest)
	switch {
	case bytes.EqualFold(status, []byte("OK")):
		return Positive
	case bytes.EqualFold(status, []byte("PREAUTH")), bytes.EqualFold(status, []byte("BYE")):
		return Negative
	}
	return Malformed
}

// ProbeCommand returns "<tag> CAPABILITY".
func (IMAP) ProbeCommand(tag string) []byte {
	return command(tag, "CAPABILITY")
}

// ProbeResponse classifies the CAPABILITY reply.
func (IMAP) ProbeResponse(tag string, line []byte) Verdict {
	return imapCompletion(tag, line)
}

// Advertises reports whether line is a capability listing with
// STARTTLS, either untagged or as a [CAPABILITY ...] response code.
func (IMAP) Advertises(line []byte) bool {
	fields := bytes.Fields(line)
	for i, f := range fields {
		if !bytes.EqualFold(bytes.TrimPrefix(f, []byte("[")), []byte("CAPABILITY")) {
			continue
		}
		for _, c := range fields[i+1:] {
			if bytes.EqualFold(bytes.TrimRight(c, "]"), []byte("STARTTLS")) {
				return true
			}
		}
	}
	return false
}

// UpgradeCommand returns "<tag> STARTTLS".
func (IMAP) UpgradeCommand(tag string) []byte {
	return command(tag, "STARTTLS")
}

// UpgradeResponse classifies the STARTTLS reply.
func (IMAP) UpgradeResponse(tag string, line []byte) Verdict {
	return imapCompletion(tag, line)
}

// imapCompletion classifies a line while waiting for the tagged
// completion of the command tagged tag. Untagged data continues the
// reply, except an untagged BYE which ends it.
func imapCompletion(tag string, line []byte) Verdict {
	first, rest := cutWord(line)
	status, _ := cutWord(rest)
	switch {
	case len(first) == 0:
		return Malformed
	case bytes.Equal(first, []byte("*")):
		if bytes.EqualFold(status, []byte("BYE")) {
			return Negative
		}
		return Continue
	case bytes.Equal(first, []byte("+")):
		return Malformed
	case string(first) != tag:
		return Mismatch
	}
	switch {
	case bytes.EqualFold(status, []byte("OK")):
		return Positive
	case bytes.EqualFold(status, []byte("NO")), bytes.EqualFold(status, []byte("BAD")):
		return Negative
	}
	return Malformed
}
