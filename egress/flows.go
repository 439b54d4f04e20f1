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

package egress

import (
	"context"
	"net"
	"strconv"

	"github.com/nabbar/g3egress/stats"
	"github.com/nabbar/g3egress/tasknotes"
)

func splitHostPort(upstream string) (string, int) {
	host, portStr, err := net.SplitHostPort(upstream)
	if err != nil {
		return upstream, 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func (e *Escaper) taskSinks(task stats.SinkSet) stats.SinkSet {
	if len(e.GlobalSinks) == 0 {
		return task
	}
	out := make(stats.SinkSet, 0, len(e.GlobalSinks)+len(task))
	out = append(out, e.GlobalSinks...)
	out = append(out, task...)
	return out
}

// NewPlainTcp implements Flow 1: Select -> Dial(upstream) -> Accounting
// -> Done. No tunneling, no TLS.
func (e *Escaper) NewPlainTcp(ctx context.Context, notes *tasknotes.TcpConnectTaskNotes, server tasknotes.ServerTaskNotes, taskStats stats.SinkSet) (*TunneledDuplex, TcpConnectError) {
	conn, derr := e.dial(ctx, e.UpstreamPeers, notes.Bind, notes)
	if derr != nil {
		return nil, derr
	}

	sinks := e.taskSinks(taskStats)
	return newDuplex(conn, nil, sinks, sinks), nil
}

// NewHttpConnectTcp implements Flow 2: Select(proxy_set) -> Dial(proxy)
// -> TunnelNegotiate(CONNECT upstream) -> Accounting -> Done.
func (e *Escaper) NewHttpConnectTcp(ctx context.Context, notes *tasknotes.TcpConnectTaskNotes, server tasknotes.ServerTaskNotes, taskStats stats.SinkSet) (*TunneledDuplex, TcpConnectError) {
	conn, derr := e.dial(ctx, e.ProxyPeers, notes.Bind, notes)
	if derr != nil {
		return nil, derr
	}

	cfg := e.Config.Load()
	host, port := splitHostPort(notes.Upstream)

	res, nerr := e.negotiate(conn, cfg, host, port, server)
	if nerr != nil {
		_ = conn.Close()
		e.logFailure(server.TaskID, notes.Upstream, peerString(conn), "", TcpStream, PhaseTunnelNegotiate, nerr)
		return nil, nerr
	}

	sinks := e.taskSinks(taskStats)
	return newDuplex(conn, res.Residual, sinks, sinks), nil
}

// NewPlainTls implements Flow 3: Select -> Dial(upstream) ->
// OriginTls(sni=upstream.host) -> Accounting -> Done.
func (e *Escaper) NewPlainTls(ctx context.Context, notes *tasknotes.TcpConnectTaskNotes, server tasknotes.ServerTaskNotes, taskStats stats.SinkSet, sniName string) (*TunneledDuplex, TcpConnectError) {
	conn, derr := e.dial(ctx, e.UpstreamPeers, notes.Bind, notes)
	if derr != nil {
		return nil, derr
	}

	tlsConn, terr := e.tlsLeg(ctx, conn, e.OriginTLS, sniName, TcpStream, PhaseOriginTls, server, notes.Upstream)
	if terr != nil {
		return nil, terr
	}

	sinks := e.taskSinks(taskStats)
	return newDuplex(tlsConn, nil, sinks, sinks), nil
}

// NewHttpConnectTls implements Flow 4: Select(proxy_set) -> Dial(proxy)
// -> ProxyTls(sni=proxy.host) -> TunnelNegotiate(CONNECT upstream) ->
// OriginTls(sni=upstream.host) -> Accounting -> Done.
//
// The CONNECT request travels over the outer (proxy) TLS layer.
// Residual bytes pipelined past the CONNECT response are credited to
// the read sinks before the origin handshake starts, then handed to
// the origin TLS engine unmodified so it sees them first.
func (e *Escaper) NewHttpConnectTls(ctx context.Context, notes *tasknotes.TcpConnectTaskNotes, server tasknotes.ServerTaskNotes, taskStats stats.SinkSet, proxySniName, originSniName string) (*TunneledDuplex, TcpConnectError) {
	conn, derr := e.dial(ctx, e.ProxyPeers, notes.Bind, notes)
	if derr != nil {
		return nil, derr
	}

	proxyConn, perr := e.proxyTls(ctx, conn, proxySniName, server, notes.Upstream)
	if perr != nil {
		return nil, perr
	}

	cfg := e.Config.Load()
	host, port := splitHostPort(notes.Upstream)

	res, nerr := e.negotiate(proxyConn, cfg, host, port, server)
	if nerr != nil {
		_ = proxyConn.Close()
		e.logFailure(server.TaskID, notes.Upstream, peerString(proxyConn), proxySniName, ProxyLeg, PhaseTunnelNegotiate, nerr)
		return nil, nerr
	}

	sinks := e.taskSinks(taskStats)
	sinks.AddRead(uint64(len(res.Residual)))

	tlsConn, terr := e.originTls(ctx, newResidualConn(proxyConn, res.Residual), originSniName, server, notes.Upstream)
	if terr != nil {
		return nil, terr
	}

	return newDuplex(tlsConn, nil, sinks, sinks), nil
}

// residualConn prepends already-read bytes ahead of an underlying
// net.Conn's Read stream, so a TLS handshake layered on top sees any
// data the CONNECT peer pipelined before the handshake began. Write and
// the rest of net.Conn pass straight through.
type residualConn struct {
	net.Conn
	residual []byte
}

func newResidualConn(conn net.Conn, residual []byte) net.Conn {
	if len(residual) == 0 {
		return conn
	}
	return &residualConn{Conn: conn, residual: residual}
}

func (c *residualConn) Read(p []byte) (int, error) {
	if len(c.residual) > 0 {
		n := copy(p, c.residual)
		c.residual = c.residual[n:]
		return n, nil
	}
	return c.Conn.Read(p)
}
