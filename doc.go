// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package starttls implements the STARTTLS upgrade negotiation of
// line-oriented protocols as an I/O-free resumable state machine.
//
// An [Upgrade] never reads or writes a transport. Each call to
// [Upgrade.Resume] either finishes the negotiation or returns the next
// [Request] the caller must perform: a [Read] of at most MaxLen bytes
// or a [Write] of a command line. The same negotiation can therefore be
// driven by a blocking loop, a goroutine, an event loop, or a test
// feeding canned bytes.
//
// # Architecture
//
//   - Requests: [Read] and [Write] are plain data and kont effect operations; results are fed back as [Result].
//   - Grammar: a [Dialect] supplies command literals and line classification. [IMAP], [SMTP] and [POP3] are provided.
//   - Coroutine: [Upgrade] walks greeting, optional capability probe, STARTTLS command and reply, tolerating arbitrary fragmentation.
//   - Failures: terminal, reported as *[Error] with a [Kind] and the offending server line. Nothing is retried.
//   - Effects: [Eff] and [Expr] express the negotiation on [code.hybscloud.com/kont] for stepping or handler-based execution.
//
// # Driving Loop
//
// The caller owns the loop. Call Resume with nil first; while a request
// is returned, perform exactly that request once and Resume with its
// result; stop at the first terminal result. Resuming a terminated
// Upgrade panics.
//
// Runtimes for io.Reader/io.Writer transports live in package drive.
//
// # Example
//
//	up := starttls.New(starttls.WithDiscardGreeting(true))
//	req, err := up.Resume(nil)
//	for req != nil {
//		req, err = up.Resume(perform(conn, req))
//	}
//	if err != nil {
//		return err
//	}
//	tlsConn := tls.Client(conn, config)
package starttls
