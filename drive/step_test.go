// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drive_test

import (
	"bufio"
	"testing"

	"code.hybscloud.com/iox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/starttls"
	"code.hybscloud.com/starttls/drive"
	"code.hybscloud.com/starttls/pipe"
)

// TestStepAdvance drives a negotiation and a scripted server on one
// goroutine, interleaving Advance with server writes.
func TestStepAdvance(t *testing.T) {
	skipRace(t)
	client, server := pipe.New()
	rt := drive.NewRuntime(client)
	up := starttls.New()

	out, susp := drive.Step(up)
	require.NotNil(t, susp, "negotiation completed before any I/O")
	_, isRead := susp.Op().(starttls.Read)
	require.True(t, isRead, "first request must be a read")

	// Nothing from the server yet: the read would block.
	out, susp, err := drive.Advance(rt, susp)
	require.True(t, iox.IsWouldBlock(err))
	require.NotNil(t, susp)

	_, err = server.Write([]byte(greeting))
	require.NoError(t, err)

	// Greeting arrives, then the command is written.
	for susp != nil {
		if _, ok := susp.Op().(starttls.Read); ok && up.State() == starttls.AwaitUpgradeResponse {
			break
		}
		out, susp, err = drive.Advance(rt, susp)
		require.NoError(t, err)
	}
	require.NotNil(t, susp)

	cmd := make([]byte, 64)
	n, err := server.Read(cmd)
	require.NoError(t, err)
	assert.Equal(t, "a1 STARTTLS\r\n", string(cmd[:n]))

	_, err = server.Write([]byte(accepted))
	require.NoError(t, err)
	for susp != nil {
		out, susp, err = drive.Advance(rt, susp)
		require.NoError(t, err)
	}
	assert.True(t, out.OK())
	assert.Equal(t, up.Serial(), out.Serial)
	assert.Equal(t, starttls.Succeeded, up.State())
}

func TestStepAdvancePeerClosed(t *testing.T) {
	skipRace(t)
	client, server := pipe.New()
	rt := drive.NewRuntime(client)
	up := starttls.New()

	server.Write([]byte("* OK ready"))
	server.Close()

	out, susp := drive.Step(up)
	var err error
	for susp != nil {
		out, susp, err = drive.Advance(rt, susp)
		require.NoError(t, err)
	}
	require.False(t, out.OK())
	var e *starttls.Error
	require.ErrorAs(t, out.Err, &e)
	assert.Equal(t, starttls.KindClosed, e.Kind)
	assert.Equal(t, "* OK ready", e.Line)
}

// TestExecPipe runs Exec against a blocking pipe server on another
// goroutine.
func TestExecPipe(t *testing.T) {
	skipRace(t)
	client, server := pipe.New()
	cmds := make(chan string, 1)
	go func() {
		defer close(cmds)
		srv := server.Blocking()
		srv.Write([]byte(greeting))
		line, err := bufio.NewReader(srv).ReadString('\n')
		if err != nil {
			return
		}
		cmds <- line
		srv.Write([]byte(accepted))
	}()

	out := drive.Exec(client, starttls.New())
	require.NoError(t, out.Err)
	assert.Equal(t, "a1 STARTTLS\r\n", <-cmds)
}

func TestRunPipeBlocking(t *testing.T) {
	skipRace(t)
	client, server := pipe.New()
	go func() {
		srv := server.Blocking()
		srv.Write([]byte("220 mx.example ESMTP\r\n"))
		bufio.NewReader(srv).ReadString('\n')
		srv.Write([]byte("454 4.7.0 TLS not available\r\n"))
	}()

	up := starttls.New(starttls.WithDialect(starttls.SMTP{}))
	err := drive.Run(t.Context(), client.Blocking(), up)
	assert.Equal(t, starttls.KindRejected, starttls.KindOf(err))
	assert.Equal(t, starttls.Failed, up.State())
}
