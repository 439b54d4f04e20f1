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
	"crypto/tls"
	"errors"
	"time"

	"github.com/nabbar/g3egress/peer"
	"github.com/quic-go/quic-go"

	liberr "github.com/nabbar/g3egress/errors"
)

// DialQUIC establishes a QUIC session to endpoint p, completing the
// handshake within the absolute deadline. Used both by the H3
// benchmark client and by any future QUIC-based escaper flow.
func DialQUIC(ctx context.Context, p peer.Endpoint, tlsConf *tls.Config, qconf *quic.Config, deadline time.Time) (quic.Connection, liberr.Error) {
	dctx := ctx

	var cancel context.CancelFunc
	if !deadline.IsZero() {
		dctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	conn, err := quic.DialAddr(dctx, p.AddrPort().String(), tlsConf, qconf)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrorConnectTimeout.Error(err)
		}
		return nil, ErrorConnectUnreachable.Error(err)
	}

	return conn, nil
}
