// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import "bytes"

// lineBuffer accumulates bytes delivered across reads until a full
// response line is available. Bytes after the first terminator are
// kept for the next line.
type lineBuffer struct {
	buf []byte
}

// append copies p into the buffer.
func (b *lineBuffer) append(p []byte) {
	b.buf = append(b.buf, p...)
}

// next pops the first complete line, without its CRLF or LF terminator.
// ok is false when no terminator has been received yet.
func (b *lineBuffer) next() (line []byte, ok bool) {
	i := bytes.IndexByte(b.buf, '\n')
	if i < 0 {
		return nil, false
	}
	line = make([]byte, i)
	copy(line, b.buf[:i])
	line = bytes.TrimSuffix(line, []byte{'\r'})

	n := copy(b.buf, b.buf[i+1:])
	b.buf = b.buf[:n]
	return line, true
}

// pending returns the number of buffered bytes not yet consumed as a line.
func (b *lineBuffer) pending() int {
	return len(b.buf)
}

// peek returns the unconsumed bytes. The slice aliases the buffer.
func (b *lineBuffer) peek() []byte {
	return b.buf
}

// reset drops all buffered bytes.
func (b *lineBuffer) reset() {
	b.buf = b.buf[:0]
}
