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
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/nabbar/g3egress/failurelog"
	"github.com/nabbar/g3egress/httpconnect"
	"github.com/nabbar/g3egress/peer"
	"github.com/nabbar/g3egress/stats"
	"github.com/nabbar/g3egress/tasknotes"
	"github.com/nabbar/g3egress/tlsengine"
	"github.com/nabbar/g3egress/transport"

	liberr "github.com/nabbar/g3egress/errors"
)

// Escaper composes peer selection, dialing, CONNECT tunneling and TLS
// into the four upstream connect flows. One Escaper instance is shared
// by every task routed through it; its configuration holders may be
// swapped concurrently without disturbing in-flight tasks.
type Escaper struct {
	// UpstreamPeers resolves the direct-to-origin candidate set used by
	// NewPlainTcp and NewPlainTls.
	UpstreamPeers peer.ResolvedPeerSet

	// ProxyPeers resolves the forward-proxy candidate set used by
	// NewHttpConnectTcp and NewHttpConnectTls.
	ProxyPeers peer.ResolvedPeerSet

	// Rand is the injectable randomness source for peer selection. Nil
	// selects peer.DefaultRandSource.
	Rand peer.RandSource

	// Config holds the CONNECT-negotiation timeout, header cap, append
	// headers and proxy-auth policy.
	Config *ConfigHolder

	// OriginTLS configures the origin-leg TLS handshake (flows 3 and 4).
	OriginTLS *tlsengine.ConfigHolder

	// ProxyTLS configures the proxy-leg TLS handshake (flow 4 only).
	ProxyTLS *tlsengine.ConfigHolder

	// ConnectTimeout bounds the TCP dial phase for every flow.
	ConnectTimeout time.Duration

	// GlobalSinks are escaper-wide counters credited on every task in
	// addition to the per-task sinks passed to each New* call.
	GlobalSinks stats.SinkSet

	// FailureLog receives one record per negotiation/TLS failure. May be
	// nil, in which case failures are simply not logged.
	FailureLog failurelog.Logger
}

func (e *Escaper) rand() peer.RandSource {
	if e.Rand != nil {
		return e.Rand
	}
	return peer.DefaultRandSource()
}

func (e *Escaper) logFailure(taskID, upstream, tlsPeer, tlsName string, app failurelog.TlsApplication, phase Phase, reason error) {
	if e.FailureLog == nil {
		return
	}
	e.FailureLog.LogFailure(failurelog.Record{
		TaskID:      taskID,
		Upstream:    upstream,
		TlsPeer:     tlsPeer,
		TlsName:     tlsName,
		Application: app,
		Phase:       string(phase),
		Reason:      reason,
	})
}

// dial selects one endpoint from peers and opens a TCP stream to it,
// recording the attempt and the observed local address into notes.
func (e *Escaper) dial(ctx context.Context, peers peer.ResolvedPeerSet, bind netip.Addr, notes *tasknotes.TcpConnectTaskNotes) (net.Conn, TcpConnectError) {
	ep, serr := peers.Select(e.rand())
	if serr != nil {
		var le liberr.Error
		if !errors.As(serr, &le) {
			le = nil
		}
		return nil, newNoPeerAvailable(le)
	}

	deadline := time.Time{}
	if e.ConnectTimeout > 0 {
		deadline = time.Now().Add(e.ConnectTimeout)
	}

	start := time.Now()
	conn, derr := transport.DialTCP(ctx, ep, bind, deadline)
	notes.RecordAttempt(time.Since(start))

	if derr != nil {
		return nil, newConnect(derr)
	}

	notes.RecordDial(ep, localAddrPort(conn))

	return conn, nil
}

func localAddrPort(conn net.Conn) netip.AddrPort {
	if conn == nil {
		return netip.AddrPort{}
	}
	if a, ok := conn.LocalAddr().(*net.TCPAddr); ok {
		if addr, ok2 := netip.AddrFromSlice(a.IP); ok2 {
			return netip.AddrPortFrom(addr.Unmap(), uint16(a.Port))
		}
	}
	return netip.AddrPort{}
}

// negotiate runs the CONNECT handshake over rw, bounded by the
// configured peer-negotiation timeout when rw is a net.Conn.
func (e *Escaper) negotiate(rw net.Conn, cfg *EscaperConfig, host string, port int, server tasknotes.ServerTaskNotes) (*httpconnect.Result, TcpConnectError) {
	if cfg.PeerNegotiationTimeout > 0 {
		_ = rw.SetDeadline(time.Now().Add(cfg.PeerNegotiationTimeout.Time()))
		defer func() { _ = rw.SetDeadline(time.Time{}) }()
	}

	res, nerr := httpconnect.Negotiate(rw, httpconnect.Options{
		Host:            host,
		Port:            port,
		User:            server.UserName,
		PassProxyUserID: cfg.PassProxyUserID,
		AppendHeaders:   cfg.AppendHeaders,
		MaxHeaderBytes:  cfg.MaxConnectHeaderBytes,
	})

	if nerr == nil {
		return res, nil
	}

	if isDeadlineErr(nerr) {
		return res, newNegotiationPeerTimeout(nerr)
	}

	status := 0
	if res != nil {
		status = res.StatusCode
	}

	return res, newNegotiation(nerr, status)
}

func isDeadlineErr(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// originTls performs the origin-leg TLS handshake over stream.
func (e *Escaper) originTls(ctx context.Context, stream net.Conn, sniName string, server tasknotes.ServerTaskNotes, upstream string) (net.Conn, TcpConnectError) {
	return e.tlsLeg(ctx, stream, e.OriginTLS, sniName, OriginLeg, PhaseOriginTls, server, upstream)
}

// proxyTls performs the proxy-leg TLS handshake over stream.
func (e *Escaper) proxyTls(ctx context.Context, stream net.Conn, sniName string, server tasknotes.ServerTaskNotes, upstream string) (net.Conn, TcpConnectError) {
	return e.tlsLeg(ctx, stream, e.ProxyTLS, sniName, ProxyLeg, PhaseProxyTls, server, upstream)
}

func (e *Escaper) tlsLeg(ctx context.Context, stream net.Conn, holder *tlsengine.ConfigHolder, sniName string, app failurelog.TlsApplication, phase Phase, server tasknotes.ServerTaskNotes, upstream string) (net.Conn, TcpConnectError) {
	if holder == nil {
		_ = stream.Close()
		err := newInternalConfig(nil, phase)
		e.logFailure(server.TaskID, upstream, "", sniName, app, phase, err)
		return nil, err
	}

	cfg := holder.Load()

	conn, herr := tlsengine.Handshake(ctx, stream, cfg, sniName)
	if herr == nil {
		return conn, nil
	}

	timeout := herr.HasCode(tlsengine.ErrorHandshakeTimeout)
	internal := herr.HasCode(tlsengine.ErrorInternalConfig)

	var out TcpConnectError
	switch {
	case internal:
		out = newInternalConfig(herr, phase)
	default:
		out = newTlsHandshake(herr, app, phase, timeout)
	}

	e.logFailure(server.TaskID, upstream, peerString(stream), sniName, app, phase, herr)

	return nil, out
}

func peerString(conn net.Conn) string {
	if conn == nil || conn.RemoteAddr() == nil {
		return ""
	}
	return conn.RemoteAddr().String()
}
