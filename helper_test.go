// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls_test

import (
	"testing"

	"code.hybscloud.com/starttls"
)

// transcript records what a negotiation asked of its caller.
type transcript struct {
	writes []string
	reads  []int
}

// negotiate drives up to completion, serving each Read with the next
// chunk (split to the requested MaxLen) and acknowledging each Write.
// An exhausted chunk list is served as a zero-length read.
// Asserts exactly one request is pending before every Resume.
func negotiate(tb testing.TB, up *starttls.Upgrade, chunks ...string) (transcript, error) {
	tb.Helper()
	var tr transcript
	chunks = append([]string(nil), chunks...)
	req, err := up.Resume(nil)
	for req != nil {
		if up.Pending() == nil {
			tb.Fatalf("request %T returned but nothing pending", req)
		}
		switch r := req.(type) {
		case starttls.Read:
			tr.reads = append(tr.reads, r.MaxLen)
			var b []byte
			if len(chunks) > 0 {
				b = []byte(chunks[0])
				if len(b) > r.MaxLen {
					chunks[0] = string(b[r.MaxLen:])
					b = b[:r.MaxLen]
				} else {
					chunks = chunks[1:]
				}
			}
			req, err = up.Resume(starttls.ReadResult(b))
		case starttls.Write:
			tr.writes = append(tr.writes, string(r.Bytes))
			req, err = up.Resume(starttls.WriteResult())
		default:
			tb.Fatalf("unexpected request %T", req)
		}
	}
	if up.Pending() != nil {
		tb.Fatalf("terminal result with request %T pending", up.Pending())
	}
	return tr, err
}

// mustPanic fails tb unless f panics.
func mustPanic(tb testing.TB, f func()) {
	tb.Helper()
	defer func() {
		if recover() == nil {
			tb.Fatal("expected panic")
		}
	}()
	f()
}

// kindOf returns the failure kind of err, failing tb when err is nil.
func kindOf(tb testing.TB, err error) starttls.Kind {
	tb.Helper()
	if err == nil {
		tb.Fatal("expected negotiation failure, got success")
	}
	return starttls.KindOf(err)
}
