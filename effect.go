// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"code.hybscloud.com/kont"
)

// Outcome is the terminal value of a negotiation run as a kont
// computation. Err is nil on success, an *[Error] otherwise.
type Outcome struct {
	Serial Serial
	Err    error
}

// OK reports whether the transport is ready for the TLS handshake.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Eff expresses the negotiation driven by u as a Cont-world
// computation performing [Read] and [Write] effects. Each effect
// resumes with the *Result of the operation.
//
// The first Resume on u happens when the computation is evaluated, not
// when Eff is called.
func Eff(u *Upgrade) kont.Eff[Outcome] {
	return kont.Bind(kont.Pure(struct{}{}), func(struct{}) kont.Eff[Outcome] {
		return loop[*Result, Outcome](nil, func(res *Result) kont.Eff[kont.Either[*Result, Outcome]] {
			return step(u, res)
		})
	})
}

// Expr converts the negotiation driven by u to an Expr-world
// computation that can be stepped one effect at a time.
func Expr(u *Upgrade) kont.Expr[Outcome] {
	return kont.Reify(Eff(u))
}

// step resumes u once. Left carries the result of the performed
// request into the next iteration; Right ends the loop.
func step(u *Upgrade, res *Result) kont.Eff[kont.Either[*Result, Outcome]] {
	req, err := u.Resume(res)
	switch r := req.(type) {
	case Read:
		return kont.Bind(kont.Perform(r), next)
	case Write:
		return kont.Bind(kont.Perform(r), next)
	}
	return kont.Pure(kont.Right[*Result, Outcome](Outcome{Serial: u.Serial(), Err: err}))
}

func next(res *Result) kont.Eff[kont.Either[*Result, Outcome]] {
	return kont.Pure(kont.Left[*Result, Outcome](res))
}

// loop runs a recursive computation.
// f returns Left(nextState) to continue or Right(result) to finish.
func loop[S, A any](initial S, f func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	return kont.Bind(f(initial), func(e kont.Either[S, A]) kont.Eff[A] {
		if left, ok := e.GetLeft(); ok {
			return loop(left, f)
		}
		right, _ := e.GetRight()
		return kont.Pure(right)
	})
}
