// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drive

import (
	"io"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"

	"code.hybscloud.com/starttls"
)

// ioHandler implements kont.Handler for starttls request effects.
// Waits on iox.ErrWouldBlock, converting non-blocking dispatch
// into blocking evaluation for Exec/ExecExpr.
type ioHandler[R any] struct {
	rt *Runtime
}

// Dispatch implements kont.Handler via structural type assertion.
// Waits past the iox.ErrWouldBlock boundary with adaptive backoff.
func (h ioHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	req, ok := op.(starttls.Request)
	if !ok {
		panic("drive: unhandled effect in ioHandler")
	}
	return dispatchWait(h.rt, req), true
}

// dispatchWait blocks until Dispatch succeeds, backing off on
// iox.ErrWouldBlock with iox.Backoff.
func dispatchWait(rt *Runtime, req starttls.Request) *starttls.Result {
	var bo iox.Backoff
	for {
		res, err := rt.Dispatch(req)
		if err == nil {
			return res
		}
		bo.Wait()
	}
}

// Exec runs the Cont-world negotiation of up over rw.
// rw may be blocking or non-blocking; iox.ErrWouldBlock is waited out
// with adaptive backoff, without spawning goroutines.
func Exec(rw io.ReadWriter, up *starttls.Upgrade) starttls.Outcome {
	h := ioHandler[starttls.Outcome]{rt: NewRuntime(rw)}
	return kont.Handle(starttls.Eff(up), h)
}

// ExecExpr runs the Expr-world negotiation of up over rw.
// rw may be blocking or non-blocking; iox.ErrWouldBlock is waited out
// with adaptive backoff, without spawning goroutines.
func ExecExpr(rw io.ReadWriter, up *starttls.Upgrade) starttls.Outcome {
	h := ioHandler[starttls.Outcome]{rt: NewRuntime(rw)}
	return kont.HandleExpr(starttls.Expr(up), h)
}
