// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drive_test

import (
	"bufio"
	"bytes"
	"io"
	"net"
)

const (
	greeting = "* OK IMAP4rev1 Service Ready\r\n"
	accepted = "a1 OK Begin TLS negotiation now\r\n"
	declined = "a1 NO STARTTLS not supported\r\n"
)

// serve plays a one-command server on conn: sends the greeting, reads
// one command line, then answers with reply. The received command is
// delivered on the returned channel.
func serve(conn net.Conn, greeting, reply string) <-chan string {
	cmds := make(chan string, 1)
	go func() {
		defer close(cmds)
		if _, err := conn.Write([]byte(greeting)); err != nil {
			return
		}
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}
		cmds <- line
		conn.Write([]byte(reply))
	}()
	return cmds
}

// stream joins a canned reader and a recording writer.
type stream struct {
	in  io.Reader
	out bytes.Buffer
}

func (s *stream) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *stream) Write(p []byte) (int, error) { return s.out.Write(p) }

func newStream(server string) *stream {
	return &stream{in: bytes.NewReader([]byte(server))}
}

// emptyReader never makes progress.
type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, nil }

// dribble accepts at most max bytes per Write and reports
// iox.ErrWouldBlock for the rest.
type dribble struct {
	io.Reader
	max     int
	written bytes.Buffer
	calls   int
}
