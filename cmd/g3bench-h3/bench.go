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

package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/nabbar/g3egress/peer"
	"github.com/nabbar/g3egress/stats"
	"github.com/nabbar/g3egress/transport"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// resolvePeers turns a host into a ResolvedPeerSet of equally weighted
// endpoints, the minimal resolver contract the egress core expects
// from its caller.
func resolvePeers(ctx context.Context, host string, port int) (peer.ResolvedPeerSet, error) {
	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}

	set := make(peer.ResolvedPeerSet, 0, len(ips))
	for _, ip := range ips {
		set = append(set, peer.WeightedEndpoint{
			Endpoint: peer.NewEndpoint(netip.AddrPortFrom(ip, uint16(port))),
			Weight:   1,
		})
	}

	return set, nil
}

// probeConnect exercises the connect phase in isolation against one
// endpoint, classifying the dial failure the same way the TCP escaper
// flows do, so a bad peer is reported as a network error (exit 2)
// before any h3 session is attempted.
func probeConnect(ctx context.Context, ep peer.Endpoint, tlsConf *tls.Config, connectTimeout time.Duration) error {
	qconf := &quic.Config{}
	conn, derr := transport.DialQUIC(ctx, ep, tlsConf, qconf, time.Now().Add(connectTimeout))
	if derr != nil {
		return derr
	}
	return conn.CloseWithError(0, "")
}

// runBench issues one h3 request per pooled connection (or a single
// request when pooling is not requested) against the resolved target
// and reports pass/fail per attempt.
func runBench(ctx context.Context, a *benchArgs, out io.Writer) error {
	peers, err := resolvePeers(ctx, a.host, a.port)
	if err != nil {
		return networkError(err)
	}

	ep, serr := peers.Select(nil)
	if serr != nil {
		return networkError(serr)
	}

	tlsConf := &tls.Config{
		ServerName: a.host,
		NextProtos: []string{http3.NextProtoH3},
	}

	if err = probeConnect(ctx, ep, tlsConf.Clone(), a.connectTimeout); err != nil {
		return networkError(err)
	}

	var localAddr *net.UDPAddr
	if a.localAddress != nil {
		localAddr = &net.UDPAddr{IP: a.localAddress}
	}

	counter := stats.NewCounter()
	sinks := stats.SinkSet{counter}

	n := a.requestCount()
	failures := 0

	for i := 0; i < n; i++ {
		status, nbytes, err := sendOne(ctx, ep, tlsConf.Clone(), localAddr, a)
		if err != nil {
			failures++
			fmt.Fprintf(out, "request %d: error: %v\n", i, err)
			continue
		}

		sinks.AddRead(uint64(nbytes))

		if !a.acceptStatus(status) {
			failures++
			fmt.Fprintf(out, "request %d: status %d (rejected)\n", i, status)
			continue
		}

		fmt.Fprintf(out, "request %d: status %d, %d bytes\n", i, status, nbytes)
	}

	fmt.Fprintf(out, "total read bytes: %d\n", counter.ReadBytes())

	if failures == n {
		return networkError(fmt.Errorf("all %d request(s) failed", n))
	}

	return nil
}

// sendOne opens its own h3 client session over a freshly dialed QUIC
// connection and performs a single request. Each pooled or
// non-multiplexed request gets its own session; the default (neither
// flag set) path behaves identically for a single request count.
func sendOne(ctx context.Context, ep peer.Endpoint, tlsConf *tls.Config, localAddr *net.UDPAddr, a *benchArgs) (status int, nbytes int64, rerr error) {
	rctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rt := &http3.RoundTripper{
		TLSClientConfig: tlsConf,
		QUICConfig:      &quic.Config{},
		Dial: func(dctx context.Context, _ string, tc *tls.Config, qc *quic.Config) (quic.EarlyConnection, error) {
			udpConn, derr := net.ListenUDP("udp", localAddr)
			if derr != nil {
				return nil, derr
			}
			return quic.DialEarly(dctx, udpConn, net.UDPAddrFromAddrPort(ep.AddrPort()), tc, qc)
		},
	}
	defer func() { _ = rt.Close() }()

	req, err := http.NewRequestWithContext(rctx, a.method, a.targetURL.String(), nil)
	if err != nil {
		return 0, 0, err
	}
	req.Host = a.host

	resp, err := rt.RoundTrip(req)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	written, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return resp.StatusCode, written, err
	}

	return resp.StatusCode, written, nil
}
