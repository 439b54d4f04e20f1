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

package tlsengine

import (
	"context"
	"crypto/tls"
	"errors"
	"net"

	liberr "github.com/nabbar/g3egress/errors"
)

// Handshake performs an outbound TLS handshake over stream, using
// sniName as the server name and cfg's ALPN list and handshake
// deadline. On any failure the underlying stream is closed before the
// error is returned, so the caller never observes a half-open socket.
func Handshake(ctx context.Context, stream net.Conn, cfg *TlsClientConfig, sniName string) (*tls.Conn, liberr.Error) {
	if cfg == nil || cfg.Certs == nil {
		_ = stream.Close()
		return nil, ErrorInternalConfig.Error(nil)
	}

	tcfg := cfg.Certs.TlsConfig(sniName)
	if len(cfg.ALPN) > 0 {
		tcfg.NextProtos = cfg.ALPN
	}

	hctx := ctx
	var cancel context.CancelFunc
	if cfg.HandshakeTimeout > 0 {
		hctx, cancel = context.WithTimeout(ctx, cfg.HandshakeTimeout.Time())
		defer cancel()
	}

	conn := tls.Client(stream, tcfg)

	if err := conn.HandshakeContext(hctx); err != nil {
		_ = conn.Close()

		if errors.Is(hctx.Err(), context.DeadlineExceeded) {
			return nil, ErrorHandshakeTimeout.Error(err)
		}

		return nil, ErrorHandshakeFailed.Error(err)
	}

	return conn, nil
}
