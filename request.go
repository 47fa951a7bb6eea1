// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"code.hybscloud.com/kont"
)

// Request is an I/O operation the caller must perform on behalf of an
// [Upgrade]. The set is closed: a Request is either a [Read] or a [Write].
type Request interface {
	request()
}

// Read asks the caller to read at most MaxLen bytes from the transport.
// The bytes obtained are fed back in [Result.Bytes]; zero bytes means
// the peer closed the stream.
//
// Read is also a kont effect operation: Perform(Read{MaxLen: n}) resumes
// with the *Result of the read.
type Read struct {
	kont.Phantom[*Result]
	MaxLen int
}

func (Read) request() {}

// Write asks the caller to write Bytes fully to the transport and
// acknowledge with an empty [Result].
//
// Write is also a kont effect operation: Perform(Write{Bytes: b}) resumes
// with the *Result of the write.
type Write struct {
	kont.Phantom[*Result]
	Bytes []byte
}

func (Write) request() {}

// Result is the outcome of the previously requested operation.
//
// For a [Read], Bytes holds what was obtained (len(Bytes) <= MaxLen).
// For a [Write], the zero Result is the acknowledgement.
// Err reports a transport failure; it terminates the negotiation.
//
// The coroutine copies Bytes before Resume returns, so the caller may
// reuse its buffer.
type Result struct {
	Bytes []byte
	Err   error
}

// ReadResult returns the Result of a read that obtained b.
func ReadResult(b []byte) *Result {
	return &Result{Bytes: b}
}

// WriteResult returns the acknowledgement of a completed write.
func WriteResult() *Result {
	return &Result{}
}

// ErrorResult returns the Result of a failed read or write.
func ErrorResult(err error) *Result {
	return &Result{Err: err}
}
