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

package egress_test

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/netip"
	"time"

	"github.com/nabbar/g3egress/certificates"
	"github.com/nabbar/g3egress/duration"
	"github.com/nabbar/g3egress/egress"
	"github.com/nabbar/g3egress/httpconnect"
	"github.com/nabbar/g3egress/peer"
	"github.com/nabbar/g3egress/stats"
	"github.com/nabbar/g3egress/tasknotes"
	"github.com/nabbar/g3egress/tlsengine"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewPlainTcp", func() {
	It("dials the sole resolved endpoint and accounts written bytes (S1)", func() {
		ln, peers := listen()
		defer func() { _ = ln.Close() }()

		go func() {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			defer func() { _ = c.Close() }()
			_, _ = io.Copy(io.Discard, c)
		}()

		e := &egress.Escaper{UpstreamPeers: peers}
		notes := &tasknotes.TcpConnectTaskNotes{Upstream: ln.Addr().String()}
		server := tasknotes.ServerTaskNotes{TaskID: "s1"}
		counter := stats.NewCounter()

		dup, eerr := e.NewPlainTcp(ctx, notes, server, stats.SinkSet{counter})
		Expect(eerr).To(BeNil())
		Expect(dup).ToNot(BeNil())
		Expect(notes.LocalAddr.IsValid()).To(BeTrue())
		Expect(notes.ConnectTries).To(Equal(1))

		n, werr := dup.Writer.Write([]byte("hi"))
		Expect(werr).ToNot(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(counter.WriteBytes()).To(Equal(uint64(2)))

		Expect(dup.Close()).To(Succeed())
	})

	It("reports NoPeerAvailable and dials nothing when the set is empty", func() {
		e := &egress.Escaper{}
		notes := &tasknotes.TcpConnectTaskNotes{Upstream: "example.com:80"}

		dup, eerr := e.NewPlainTcp(ctx, notes, tasknotes.ServerTaskNotes{}, nil)
		Expect(dup).To(BeNil())
		Expect(eerr).ToNot(BeNil())
		Expect(eerr.ConnectPhase()).To(Equal(egress.PhaseSelect))

		var np egress.ErrNoPeerAvailable
		Expect(errors.As(eerr, &np)).To(BeTrue())
	})
})

var _ = Describe("NewHttpConnectTcp", func() {
	It("surfaces NegotiationRejected on a 407 response, closing the socket (S2)", func() {
		ln, proxies := listen()
		defer func() { _ = ln.Close() }()

		go func() {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			defer func() { _ = c.Close() }()

			br := bufio.NewReader(c)
			for {
				line, rerr := br.ReadString('\n')
				if rerr != nil || line == "\r\n" {
					break
				}
			}
			_, _ = c.Write([]byte("HTTP/1.1 407 Proxy Authentication Required\r\n\r\n"))
		}()

		e := &egress.Escaper{
			ProxyPeers: proxies,
			Config:     egress.NewConfigHolder(&egress.EscaperConfig{MaxConnectHeaderBytes: 4096}),
		}
		notes := &tasknotes.TcpConnectTaskNotes{Upstream: "secret.example:443"}

		dup, eerr := e.NewHttpConnectTcp(ctx, notes, tasknotes.ServerTaskNotes{TaskID: "s2"}, nil)
		Expect(dup).To(BeNil())
		Expect(eerr).ToNot(BeNil())
		Expect(eerr.ConnectPhase()).To(Equal(egress.PhaseTunnelNegotiate))

		var negErr egress.ErrNegotiation
		Expect(errors.As(eerr, &negErr)).To(BeTrue())
		Expect(negErr.Status).To(Equal(407))

		var cause error = errors.Unwrap(eerr)
		Expect(cause).ToNot(BeNil())
	})

	It("credits exactly the pipelined residual bytes before any further read (S3)", func() {
		ln, proxies := listen()
		defer func() { _ = ln.Close() }()

		go func() {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			defer func() { _ = c.Close() }()

			br := bufio.NewReader(c)
			for {
				line, rerr := br.ReadString('\n')
				if rerr != nil || line == "\r\n" {
					break
				}
			}
			_, _ = c.Write([]byte("HTTP/1.1 200 OK\r\n\r\nHELLO"))
			time.Sleep(50 * time.Millisecond)
		}()

		e := &egress.Escaper{
			ProxyPeers: proxies,
			Config:     egress.NewConfigHolder(&egress.EscaperConfig{MaxConnectHeaderBytes: 4096}),
		}
		notes := &tasknotes.TcpConnectTaskNotes{Upstream: "origin.example:443"}
		counter := stats.NewCounter()

		dup, eerr := e.NewHttpConnectTcp(ctx, notes, tasknotes.ServerTaskNotes{TaskID: "s3"}, stats.SinkSet{counter})
		Expect(eerr).To(BeNil())
		Expect(dup).ToNot(BeNil())

		Expect(counter.ReadBytes()).To(Equal(uint64(5)))

		buf := make([]byte, 5)
		n, rerr := dup.Reader.Read(buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("HELLO"))
		Expect(counter.ReadBytes()).To(Equal(uint64(5)))

		Expect(dup.Close()).To(Succeed())
	})
})

var _ = Describe("NewPlainTls", func() {
	It("reports UpstreamTlsHandshakeTimeout tagged TcpStream within the configured budget (S4)", func() {
		ln, peers := listen()
		defer func() { _ = ln.Close() }()

		go func() {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			defer func() { _ = c.Close() }()
			time.Sleep(500 * time.Millisecond)
		}()

		e := &egress.Escaper{
			UpstreamPeers: peers,
			OriginTLS: tlsengine.NewConfigHolder(&tlsengine.TlsClientConfig{
				Certs:            certificates.New(),
				HandshakeTimeout: duration.ParseDuration(100 * time.Millisecond),
			}),
		}
		notes := &tasknotes.TcpConnectTaskNotes{Upstream: ln.Addr().String()}

		start := time.Now()
		dup, eerr := e.NewPlainTls(ctx, notes, tasknotes.ServerTaskNotes{TaskID: "s4"}, nil, "upstream.example")
		elapsed := time.Since(start)

		Expect(dup).To(BeNil())
		Expect(eerr).ToNot(BeNil())
		Expect(elapsed).To(BeNumerically("<", 2*time.Second))

		var tlsErr egress.ErrTlsHandshake
		Expect(errors.As(eerr, &tlsErr)).To(BeTrue())
		Expect(tlsErr.Timeout).To(BeTrue())
		Expect(tlsErr.Application).To(Equal(egress.TcpStream))
	})
})

var _ = Describe("NewHttpConnectTls", func() {
	It("tears down cleanly and tags OriginLeg when the inner certificate is untrusted (S5)", func() {
		proxyCertPEM, proxyKeyPEM := selfSignedPair("proxy.example")
		proxyCert, err := tls.X509KeyPair([]byte(proxyCertPEM), []byte(proxyKeyPEM))
		Expect(err).ToNot(HaveOccurred())

		originCertPEM, originKeyPEM := selfSignedPair("origin.example")
		originCert, err := tls.X509KeyPair([]byte(originCertPEM), []byte(originKeyPEM))
		Expect(err).ToNot(HaveOccurred())

		untrustedCAPEM, _ := selfSignedPair("untrusted-ca.example")

		ln, proxies := listen()
		defer func() { _ = ln.Close() }()

		go func() {
			raw, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			defer func() { _ = raw.Close() }()

			outer := tls.Server(raw, &tls.Config{Certificates: []tls.Certificate{proxyCert}})
			if herr := outer.Handshake(); herr != nil {
				return
			}

			br := bufio.NewReader(outer)
			for {
				line, rerr := br.ReadString('\n')
				if rerr != nil || line == "\r\n" {
					return
				}
			}
			if _, werr := outer.Write([]byte("HTTP/1.1 200 OK\r\n\r\n")); werr != nil {
				return
			}

			inner := tls.Server(outer, &tls.Config{Certificates: []tls.Certificate{originCert}})
			_ = inner.Handshake()
		}()

		proxyTrust := certificates.New()
		Expect(proxyTrust.AddRootCAString(proxyCertPEM)).To(BeTrue())

		originTrust := certificates.New()
		Expect(originTrust.AddRootCAString(untrustedCAPEM)).To(BeTrue())

		e := &egress.Escaper{
			ProxyPeers: proxies,
			Config:     egress.NewConfigHolder(&egress.EscaperConfig{MaxConnectHeaderBytes: 4096}),
			ProxyTLS: tlsengine.NewConfigHolder(&tlsengine.TlsClientConfig{
				Certs:            proxyTrust,
				HandshakeTimeout: duration.Seconds(2),
			}),
			OriginTLS: tlsengine.NewConfigHolder(&tlsengine.TlsClientConfig{
				Certs:            originTrust,
				HandshakeTimeout: duration.Seconds(2),
			}),
		}

		notes := &tasknotes.TcpConnectTaskNotes{Upstream: "origin.example:443"}
		counter := stats.NewCounter()

		dup, eerr := e.NewHttpConnectTls(ctx, notes, tasknotes.ServerTaskNotes{TaskID: "s5"}, stats.SinkSet{counter}, "proxy.example", "origin.example")
		Expect(dup).To(BeNil())
		Expect(eerr).ToNot(BeNil())

		var tlsErr egress.ErrTlsHandshake
		Expect(errors.As(eerr, &tlsErr)).To(BeTrue())
		Expect(tlsErr.Application).To(Equal(egress.OriginLeg))

		Expect(counter.WriteBytes()).To(BeNumerically(">", 0))
	})
})

var _ = Describe("config isolation", func() {
	It("lets a task holding the old snapshot finish after a hot swap (property 6)", func() {
		holder := egress.NewConfigHolder(&egress.EscaperConfig{MaxConnectHeaderBytes: 4096})
		old := holder.Load()

		holder.Store(&egress.EscaperConfig{MaxConnectHeaderBytes: 8192})

		Expect(old.MaxConnectHeaderBytes).To(Equal(4096))
		Expect(holder.Load().MaxConnectHeaderBytes).To(Equal(8192))
	})
})

var _ = Describe("no socket leak", func() {
	It("closes the dialed socket on a negotiation failure (property 1)", func() {
		ln, proxies := listen()
		defer func() { _ = ln.Close() }()

		accepted := make(chan struct{})
		go func() {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			close(accepted)
			_, _ = c.Write([]byte("not-an-http-response"))
			time.Sleep(20 * time.Millisecond)
			_ = c.Close()
		}()

		e := &egress.Escaper{
			ProxyPeers: proxies,
			Config:     egress.NewConfigHolder(&egress.EscaperConfig{MaxConnectHeaderBytes: 16}),
		}
		notes := &tasknotes.TcpConnectTaskNotes{Upstream: "origin.example:443"}

		dup, eerr := e.NewHttpConnectTcp(ctx, notes, tasknotes.ServerTaskNotes{TaskID: "leak"}, nil)
		Eventually(accepted).Should(BeClosed())
		Expect(dup).To(BeNil())
		Expect(eerr).ToNot(BeNil())
	})
})

var _ = Describe("context cancellation mid-flight", func() {
	It("aborts a stalled dial without leaking a connection or crediting bytes (property 5, dial suspension point)", func() {
		// 192.0.2.0/24 is TEST-NET-1 (RFC 5737): routers must not forward it,
		// so the dial blocks until something gives up rather than failing fast.
		blackhole := peer.ResolvedPeerSet{{Endpoint: peer.NewEndpoint(netip.MustParseAddrPort("192.0.2.1:9")), Weight: 1}}

		cctx, ccnl := context.WithCancel(ctx)
		time.AfterFunc(50*time.Millisecond, ccnl)
		defer ccnl()

		e := &egress.Escaper{UpstreamPeers: blackhole}
		notes := &tasknotes.TcpConnectTaskNotes{Upstream: "198.51.100.1:9"}
		counter := stats.NewCounter()

		start := time.Now()
		dup, eerr := e.NewPlainTcp(cctx, notes, tasknotes.ServerTaskNotes{TaskID: "cancel-dial"}, stats.SinkSet{counter})
		elapsed := time.Since(start)

		Expect(dup).To(BeNil())
		Expect(eerr).ToNot(BeNil())
		Expect(eerr.ConnectPhase()).To(Equal(egress.PhaseDial))
		Expect(elapsed).To(BeNumerically("<", 2*time.Second))

		Expect(counter.ReadBytes()).To(Equal(uint64(0)))
		Expect(counter.WriteBytes()).To(Equal(uint64(0)))
	})

	It("aborts a stalled TLS handshake without leaking the socket or crediting bytes (property 5, handshake suspension point)", func() {
		ln, peers := listen()
		defer func() { _ = ln.Close() }()

		accepted := make(chan net.Conn, 1)
		go func() {
			c, aerr := ln.Accept()
			if aerr != nil {
				return
			}
			accepted <- c
		}()

		cctx, ccnl := context.WithCancel(ctx)
		time.AfterFunc(50*time.Millisecond, ccnl)
		defer ccnl()

		e := &egress.Escaper{
			UpstreamPeers: peers,
			OriginTLS: tlsengine.NewConfigHolder(&tlsengine.TlsClientConfig{
				Certs:            certificates.New(),
				HandshakeTimeout: duration.Seconds(5),
			}),
		}
		notes := &tasknotes.TcpConnectTaskNotes{Upstream: ln.Addr().String()}
		counter := stats.NewCounter()

		start := time.Now()
		dup, eerr := e.NewPlainTls(cctx, notes, tasknotes.ServerTaskNotes{TaskID: "cancel-handshake"}, stats.SinkSet{counter}, "upstream.example")
		elapsed := time.Since(start)

		Expect(dup).To(BeNil())
		Expect(eerr).ToNot(BeNil())
		Expect(elapsed).To(BeNumerically("<", 2*time.Second))

		var tlsErr egress.ErrTlsHandshake
		Expect(errors.As(eerr, &tlsErr)).To(BeTrue())
		Expect(tlsErr.Application).To(Equal(egress.TcpStream))

		Expect(counter.ReadBytes()).To(Equal(uint64(0)))
		Expect(counter.WriteBytes()).To(Equal(uint64(0)))

		var c net.Conn
		Eventually(accepted).Should(Receive(&c))
		buf := make([]byte, 1)
		_ = c.SetReadDeadline(time.Now().Add(time.Second))
		n, rerr := c.Read(buf)
		Expect(n).To(Equal(0))
		Expect(rerr).To(HaveOccurred())
	})
})

var _ = Describe("httpconnect options wiring", func() {
	It("never sets AcceptStatus, so only 2xx is ever accepted by the proxy path", func() {
		opts := httpconnect.Options{}
		Expect(opts.AcceptStatus).To(BeNil())
	})
})
