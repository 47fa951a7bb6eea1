// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls_test

import (
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/starttls"
)

func TestExprStepping(t *testing.T) {
	up := starttls.New()
	_, susp := kont.StepExpr(starttls.Expr(up))
	if susp == nil {
		t.Fatal("expected suspension for Read")
	}
	if _, ok := susp.Op().(starttls.Read); !ok {
		t.Fatalf("expected Read, got %T", susp.Op())
	}

	_, susp = susp.Resume(starttls.ReadResult([]byte(greeting)))
	if susp == nil {
		t.Fatal("expected suspension for Write")
	}
	w, ok := susp.Op().(starttls.Write)
	if !ok {
		t.Fatalf("expected Write, got %T", susp.Op())
	}
	if string(w.Bytes) != "a1 STARTTLS\r\n" {
		t.Fatalf("command got %q", w.Bytes)
	}

	_, susp = susp.Resume(starttls.WriteResult())
	if _, ok := susp.Op().(starttls.Read); !ok {
		t.Fatalf("expected Read, got %T", susp.Op())
	}

	out, susp := susp.Resume(starttls.ReadResult([]byte(accepted)))
	if susp != nil {
		t.Fatalf("expected completion, got %T pending", susp.Op())
	}
	if !out.OK() {
		t.Fatalf("outcome got %v", out.Err)
	}
	if out.Serial != up.Serial() {
		t.Fatalf("outcome serial got %d, want %d", out.Serial, up.Serial())
	}
}

func TestEffLazy(t *testing.T) {
	up := starttls.New()
	_ = starttls.Eff(up)
	if up.State() != starttls.Start {
		t.Fatalf("Eff must not resume before evaluation, state got %v", up.State())
	}
}

func TestEffHandle(t *testing.T) {
	chunks := []string{greeting, declined}
	var writes []string
	h := kont.HandleFunc[starttls.Outcome](func(op kont.Operation) (kont.Resumed, bool) {
		switch r := op.(type) {
		case starttls.Read:
			var b []byte
			if len(chunks) > 0 {
				b, chunks = []byte(chunks[0]), chunks[1:]
			}
			return starttls.ReadResult(b), true
		case starttls.Write:
			writes = append(writes, string(r.Bytes))
			return starttls.WriteResult(), true
		default:
			panic("unhandled effect")
		}
	})

	out := kont.Handle(starttls.Eff(starttls.New()), h)
	if out.OK() {
		t.Fatal("expected rejection")
	}
	if starttls.KindOf(out.Err) != starttls.KindRejected {
		t.Fatalf("kind got %v", starttls.KindOf(out.Err))
	}
	if len(writes) != 1 || writes[0] != "a1 STARTTLS\r\n" {
		t.Fatalf("writes got %q", writes)
	}
}
