// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drive

import (
	"context"
	"io"
	"time"

	"code.hybscloud.com/starttls"
)

// deadliner is implemented by transports such as net.Conn.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Run drives up to a terminal result over rw, blocking the calling
// goroutine. Each request is performed exactly once with [Handle].
//
// If ctx can be canceled and rw has a SetDeadline method, Run takes
// over the deadlines of rw: the end of ctx interrupts a blocked read or
// write by moving the deadline into the past, and the deadline is
// cleared before Run returns. A ctx that is never done leaves the
// deadlines of rw untouched. When the context ends the negotiation, Run
// returns the context's error.
func Run(ctx context.Context, rw io.ReadWriter, up *starttls.Upgrade) error {
	if d, ok := rw.(deadliner); ok && ctx.Done() != nil {
		done := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			d.SetDeadline(time.Unix(1, 0))
			close(done)
		})
		defer func() {
			if !stop() {
				<-done
			}
			d.SetDeadline(time.Time{})
		}()
	}

	req, err := up.Resume(nil)
	for req != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		req, err = up.Resume(Handle(rw, req))
	}
	if err != nil && ctx.Err() != nil && starttls.KindOf(err) == starttls.KindTransport {
		return ctx.Err()
	}
	return err
}

// Go runs [Run] on a new goroutine. The returned channel receives the
// result of the negotiation and is then closed.
//
// The caller must not touch rw or up until the result is received.
func Go(ctx context.Context, rw io.ReadWriter, up *starttls.Upgrade) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- Run(ctx, rw, up)
	}()
	return done
}
