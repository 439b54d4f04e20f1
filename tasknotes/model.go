/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package tasknotes holds the per-attempt scratchpad and read-only task
// context the egress orchestrator threads through a single dial attempt.
package tasknotes

import (
	"net/netip"
	"time"

	"github.com/nabbar/g3egress/peer"
)

// TcpConnectTaskNotes is the mutable scratchpad accompanying one dial
// attempt. It is never shared across goroutines: the orchestrator owns
// it exclusively and hands dialers an exclusive borrow for the duration
// of their phase.
type TcpConnectTaskNotes struct {
	// Upstream is the logical destination (host-or-IP + port) requested
	// by the client.
	Upstream string

	// Bind is an optional local address to bind the outbound socket to.
	Bind netip.Addr

	// NextPeer is the endpoint last attempted, set by the transport
	// dialer once a peer has been selected.
	NextPeer peer.Endpoint

	// LocalAddr and OutgoingAddr are populated once the dial succeeds.
	LocalAddr    netip.AddrPort
	OutgoingAddr netip.AddrPort

	// ConnectTries counts dial attempts made for this task.
	ConnectTries int

	// DurationConnect is the elapsed time of the last dial attempt.
	DurationConnect time.Duration
}

// RecordAttempt increments the attempt counter and records the elapsed
// time of the attempt that just finished.
func (n *TcpConnectTaskNotes) RecordAttempt(elapsed time.Duration) {
	n.ConnectTries++
	n.DurationConnect = elapsed
}

// RecordDial stores the peer and local address observed by a successful
// dial.
func (n *TcpConnectTaskNotes) RecordDial(p peer.Endpoint, local netip.AddrPort) {
	n.NextPeer = p
	n.LocalAddr = local
	n.OutgoingAddr = p.AddrPort()
}

// ServerTaskNotes is the read-only context for a task: task id, raw user
// name, client address and accept timestamp. The egress core never
// mutates it; it is shared by read-only borrow.
type ServerTaskNotes struct {
	TaskID     string
	UserName   string
	ClientAddr netip.AddrPort
	AcceptedAt time.Time
}
