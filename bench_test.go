// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls_test

import (
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/starttls"
)

var (
	benchGreeting = []byte(greeting)
	benchAccepted = []byte(accepted)
)

// BenchmarkUpgrade measures a full IMAP negotiation with one chunk per line.
func BenchmarkUpgrade(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		up := starttls.New()
		up.Resume(nil)
		up.Resume(starttls.ReadResult(benchGreeting))
		up.Resume(starttls.WriteResult())
		if _, err := up.Resume(starttls.ReadResult(benchAccepted)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkUpgradeBytewise measures a negotiation delivered one byte per read.
func BenchmarkUpgradeBytewise(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		up := starttls.New(starttls.WithChunkSize(1))
		req, err := up.Resume(nil)
		src := [][]byte{benchGreeting, benchAccepted}
		for req != nil {
			switch req.(type) {
			case starttls.Read:
				req, err = up.Resume(starttls.ReadResult(src[0][:1]))
				if src[0] = src[0][1:]; len(src[0]) == 0 {
					src = src[1:]
				}
			case starttls.Write:
				req, err = up.Resume(starttls.WriteResult())
			}
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkExprStep measures the same negotiation through kont stepping.
func BenchmarkExprStep(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_, susp := kont.StepExpr(starttls.Expr(starttls.New()))
		_, susp = susp.Resume(starttls.ReadResult(benchGreeting))
		_, susp = susp.Resume(starttls.WriteResult())
		if out, _ := susp.Resume(starttls.ReadResult(benchAccepted)); !out.OK() {
			b.Fatal(out.Err)
		}
	}
}
