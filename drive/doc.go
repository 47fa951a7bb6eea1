// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package drive executes the requests of a [starttls.Upgrade] against
// io.Reader/io.Writer transports.
//
// # Runtimes
//
//   - Blocking: [Handle] performs one request; [Run] drives a negotiation to completion, honoring context cancellation through transport deadlines.
//   - Async: [Go] runs the same loop on its own goroutine and reports on a channel.
//   - Non-blocking: [Runtime.Dispatch] returns [code.hybscloud.com/iox.ErrWouldBlock] when the transport cannot make progress; [Step] and [Advance] evaluate the negotiation one effect at a time for event loops.
//   - Handler: [Exec] and [ExecExpr] run the kont computation with a handler that waits past ErrWouldBlock using adaptive backoff.
//
// Transport failures never escape as panics; they are delivered to the
// Upgrade as [starttls.Result.Err] and end the negotiation.
package drive
