// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

// SMTP is the ESMTP dialect (RFC 3207).
//
// Servers generally refuse STARTTLS before EHLO, so SMTP negotiations
// are usually configured with [WithProbe]; the probe is the EHLO.
//
//	S: 220 mail.example.org ESMTP
//	C: EHLO client.example.org
//	S: 250-mail.example.org
//	S: 250 STARTTLS
//	C: STARTTLS
//	S: 220 Ready to start TLS
type SMTP struct {
	// Domain is the client identity sent with EHLO.
	// Empty means "localhost".
	Domain string
}

// Name returns "smtp".
func (SMTP) Name() string { return "smtp" }

// Greeting accepts a 220 reply, possibly multi-line.
func (SMTP) Greeting(line []byte) Verdict {
	return smtpReply(line, 220)
}

// ProbeCommand returns "EHLO <domain>".
func (s SMTP) ProbeCommand(string) []byte {
	domain := s.Domain
	if domain == "" {
		domain = "localhost"
	}
	return command("EHLO", domain)
}

// ProbeResponse accepts a 250 reply, possibly multi-line.
func (SMTP) ProbeResponse(_ string, line []byte) Verdict {
	return smtpReply(line, 250)
}

// Advertises reports whether an EHLO reply line names the STARTTLS
// extension.
func (SMTP) Advertises(line []byte) bool {
	if _, ok := smtpCode(line); !ok || len(line) < 4 {
		return false
	}
	keyword, _ := cutWord(line[4:])
	return hasWordFold(keyword, "STARTTLS")
}

// UpgradeCommand returns "STARTTLS".
func (SMTP) UpgradeCommand(string) []byte {
	return command("STARTTLS")
}

// UpgradeResponse accepts 220; 4xx and 5xx are rejections.
func (SMTP) UpgradeResponse(_ string, line []byte) Verdict {
	return smtpReply(line, 220)
}

// smtpCode parses the three digit reply code of line.
func smtpCode(line []byte) (int, bool) {
	if len(line) < 3 {
		return 0, false
	}
	if len(line) > 3 && line[3] != ' ' && line[3] != '-' {
		return 0, false
	}
	code := 0
	for _, c := range line[:3] {
		if c < '0' || c > '9' {
			return 0, false
		}
		code = code*10 + int(c-'0')
	}
	if code < 200 || code > 599 {
		return 0, false
	}
	return code, true
}

// smtpReply classifies one line of a reply expected to carry want.
func smtpReply(line []byte, want int) Verdict {
	code, ok := smtpCode(line)
	switch {
	case !ok:
		return Malformed
	case len(line) > 3 && line[3] == '-':
		return Continue
	case code == want:
		return Positive
	case code >= 400:
		return Negative
	}
	return Malformed
}
