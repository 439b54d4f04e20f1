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

package transport

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"syscall"
	"time"

	"github.com/nabbar/g3egress/peer"

	liberr "github.com/nabbar/g3egress/errors"
)

// DialTCP opens a TCP stream to peer endpoint p, optionally bound to a
// local address, failing absolutely at deadline. Cancelling ctx before
// completion drops the half-open socket; no descriptor leaks in that
// path because net.Dialer.DialContext itself closes the socket it was
// building when the context is done.
func DialTCP(ctx context.Context, p peer.Endpoint, bind netip.Addr, deadline time.Time) (net.Conn, liberr.Error) {
	d := &net.Dialer{}

	if !deadline.IsZero() {
		d.Deadline = deadline
	}

	if bind.IsValid() {
		d.LocalAddr = &net.TCPAddr{IP: bind.AsSlice()}
	}

	conn, err := d.DialContext(ctx, "tcp", p.AddrPort().String())
	if err != nil {
		return nil, classifyDialError(err)
	}

	return conn, nil
}

func classifyDialError(err error) liberr.Error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return ErrorConnectTimeout.Error(err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorConnectRefused.Error(err)
	}

	if errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return ErrorConnectUnreachable.Error(err)
	}

	return ErrorConnectUnreachable.Error(err)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
