// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipe provides an in-memory, non-blocking duplex byte stream
// for driving STARTTLS negotiations without a network.
//
// Each direction is a bounded lock-free SPSC queue of byte chunks from
// [code.hybscloud.com/lfq]. Read and Write never block: they return
// [code.hybscloud.com/iox.ErrWouldBlock] when the peer has not produced
// or consumed yet. [End.Blocking] adapts an End for blocking callers.
//
// Each End must be used by a single goroutine at a time.
package pipe

import (
	"io"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// channelCapacity is the bounded capacity, in chunks, of each direction.
const channelCapacity = 64

// End is one side of an in-memory duplex stream.
type End struct {
	sendQ     *lfq.SPSC[[]byte]
	recvQ     *lfq.SPSC[[]byte]
	closed    *atomix.Uint32
	peerClose *atomix.Uint32
	rest      []byte
}

// endPair holds both ends, queues, and close flags in a single
// allocation. SPSC queues are embedded as values; only the ring
// buffers are separate heap objects.
type endPair struct {
	a        End
	b        End
	closedA  atomix.Uint32
	closedB  atomix.Uint32
	streamAB lfq.SPSC[[]byte]
	streamBA lfq.SPSC[[]byte]
}

// New creates a connected pair of ends. Bytes written to one end are
// read from the other in order.
func New() (*End, *End) {
	pair := &endPair{}
	pair.streamAB.Init(channelCapacity)
	pair.streamBA.Init(channelCapacity)

	pair.a = End{
		sendQ:     &pair.streamAB,
		recvQ:     &pair.streamBA,
		closed:    &pair.closedA,
		peerClose: &pair.closedB,
	}
	pair.b = End{
		sendQ:     &pair.streamBA,
		recvQ:     &pair.streamAB,
		closed:    &pair.closedB,
		peerClose: &pair.closedA,
	}
	return &pair.a, &pair.b
}

// Read reads buffered bytes from the peer.
// Non-blocking: returns iox.ErrWouldBlock if nothing is queued, and
// io.EOF once the peer has closed and everything was read.
func (e *End) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(e.rest) == 0 {
		chunk, err := e.recvQ.Dequeue()
		if err != nil {
			if e.peerClose.Load() == 0 {
				return 0, iox.ErrWouldBlock
			}
			// The peer may have enqueued right before closing.
			if chunk, err = e.recvQ.Dequeue(); err != nil {
				return 0, io.EOF
			}
		}
		e.rest = chunk
	}
	n := copy(p, e.rest)
	e.rest = e.rest[n:]
	return n, nil
}

// Write queues a copy of p for the peer.
// Non-blocking: returns iox.ErrWouldBlock if the queue is full, in which
// case nothing was written.
func (e *End) Write(p []byte) (int, error) {
	if e.closed.Load() != 0 {
		return 0, io.ErrClosedPipe
	}
	if len(p) == 0 {
		return 0, nil
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	if err := e.sendQ.Enqueue(&chunk); err != nil {
		return 0, iox.ErrWouldBlock
	}
	return len(p), nil
}

// Close signals end of stream to the peer. Bytes already written remain
// readable. Close is idempotent.
func (e *End) Close() error {
	e.closed.Add(1)
	return nil
}

// Blocking returns a view of e whose Read and Write wait past
// iox.ErrWouldBlock with adaptive backoff.
func (e *End) Blocking() io.ReadWriteCloser {
	return blockingEnd{e}
}

type blockingEnd struct {
	e *End
}

func (b blockingEnd) Read(p []byte) (int, error) {
	var bo iox.Backoff
	for {
		n, err := b.e.Read(p)
		if !iox.IsWouldBlock(err) {
			return n, err
		}
		bo.Wait()
	}
}

func (b blockingEnd) Write(p []byte) (int, error) {
	var bo iox.Backoff
	for {
		n, err := b.e.Write(p)
		if !iox.IsWouldBlock(err) {
			return n, err
		}
		bo.Wait()
	}
}

func (b blockingEnd) Close() error {
	return b.e.Close()
}
