// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drive

import (
	"code.hybscloud.com/kont"

	"code.hybscloud.com/starttls"
)

// Step evaluates the negotiation until its first I/O suspension.
// Returns (outcome, nil) on completion, or (zero, suspension) if pending.
// The suspended operation, susp.Op(), is a [starttls.Request].
func Step(up *starttls.Upgrade) (starttls.Outcome, *kont.Suspension[starttls.Outcome]) {
	return kont.StepExpr(starttls.Expr(up))
}

// Advance dispatches the suspended request on rt.
// Dispatch is non-blocking: returns iox.ErrWouldBlock when the
// transport cannot make progress (the I/O boundary).
//
// On success (nil error), the suspension is consumed and the negotiation
// advances to the next request or completion.
// On iox.ErrWouldBlock, the suspension is unconsumed and may be retried
// once the transport is ready.
func Advance(rt *Runtime, susp *kont.Suspension[starttls.Outcome]) (starttls.Outcome, *kont.Suspension[starttls.Outcome], error) {
	req, ok := susp.Op().(starttls.Request)
	if !ok {
		panic("drive: unhandled effect in Advance")
	}
	res, err := rt.Dispatch(req)
	if err != nil {
		var zero starttls.Outcome
		return zero, susp, err
	}
	out, next := susp.Resume(res)
	return out, next, nil
}
