// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drive

import (
	"io"

	"code.hybscloud.com/iox"
	"github.com/pkg/errors"

	"code.hybscloud.com/starttls"
)

// maxEmptyReads bounds consecutive (0, nil) reads before Handle gives up.
const maxEmptyReads = 100

// Handle performs req against rw, blocking until it completes.
//
// A read that reaches io.EOF reports zero bytes. Any other failure is
// returned in Result.Err.
func Handle(rw io.ReadWriter, req starttls.Request) *starttls.Result {
	switch r := req.(type) {
	case starttls.Read:
		buf := make([]byte, r.MaxLen)
		for range maxEmptyReads {
			n, err := rw.Read(buf)
			switch {
			case n > 0:
				return starttls.ReadResult(buf[:n])
			case err == io.EOF:
				return starttls.ReadResult(nil)
			case err != nil:
				return starttls.ErrorResult(errors.Wrap(err, "starttls: read"))
			}
		}
		return starttls.ErrorResult(errors.Wrap(io.ErrNoProgress, "starttls: read"))
	case starttls.Write:
		if _, err := rw.Write(r.Bytes); err != nil {
			return starttls.ErrorResult(errors.Wrap(err, "starttls: write"))
		}
		return starttls.WriteResult()
	}
	panic("drive: unknown request type")
}

// Runtime performs requests against a non-blocking transport whose
// Read and Write return iox.ErrWouldBlock instead of waiting.
//
// A Runtime serves one negotiation at a time: it remembers how much of
// the outstanding Write has already been written.
type Runtime struct {
	rw  io.ReadWriter
	buf []byte
	off int
}

// NewRuntime returns a Runtime over rw.
func NewRuntime(rw io.ReadWriter) *Runtime {
	return &Runtime{rw: rw}
}

// Dispatch attempts req once.
//
// It returns iox.ErrWouldBlock when the transport cannot make progress;
// the request stays outstanding and Dispatch must be called again with
// the same request. Otherwise it returns the Result to feed back.
func (rt *Runtime) Dispatch(req starttls.Request) (*starttls.Result, error) {
	switch r := req.(type) {
	case starttls.Read:
		if cap(rt.buf) < r.MaxLen {
			rt.buf = make([]byte, r.MaxLen)
		}
		n, err := rt.rw.Read(rt.buf[:r.MaxLen])
		switch {
		case n > 0:
			b := make([]byte, n)
			copy(b, rt.buf[:n])
			return starttls.ReadResult(b), nil
		case err == nil, iox.IsWouldBlock(err):
			return nil, iox.ErrWouldBlock
		case err == io.EOF:
			return starttls.ReadResult(nil), nil
		}
		return starttls.ErrorResult(errors.Wrap(err, "starttls: read")), nil
	case starttls.Write:
		n, err := rt.rw.Write(r.Bytes[rt.off:])
		rt.off += n
		if rt.off >= len(r.Bytes) {
			rt.off = 0
			return starttls.WriteResult(), nil
		}
		if err == nil || iox.IsWouldBlock(err) {
			return nil, iox.ErrWouldBlock
		}
		rt.off = 0
		return starttls.ErrorResult(errors.Wrap(err, "starttls: write")), nil
	}
	panic("drive: unknown request type")
}
