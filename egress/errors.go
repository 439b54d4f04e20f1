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
	"fmt"

	liberr "github.com/nabbar/g3egress/errors"
	"github.com/nabbar/g3egress/failurelog"
)

// TlsApplication re-exports failurelog's TLS-leg tag so callers
// pattern-matching on ErrTlsHandshake never need to import failurelog
// directly just to compare against ProxyLeg/OriginLeg/TcpStream.
type TlsApplication = failurelog.TlsApplication

const (
	ProxyLeg  = failurelog.ProxyLeg
	OriginLeg = failurelog.OriginLeg
	TcpStream = failurelog.TcpStream
)

// Phase identifies which step of a connect attempt produced an error.
type Phase string

const (
	PhaseSelect          Phase = "Select"
	PhaseDial            Phase = "Dial"
	PhaseTunnelNegotiate Phase = "TunnelNegotiate"
	PhaseProxyTls        Phase = "ProxyTls"
	PhaseOriginTls       Phase = "OriginTls"
)

// TcpConnectError is the tagged-union sum type every egress flow
// returns on failure. Each concrete variant carries its own Phase and
// wraps the underlying liberr.Error so existing HasCode tooling keeps
// working across the boundary.
type TcpConnectError interface {
	error
	ConnectPhase() Phase
	Unwrap() error
}

type baseErr struct {
	phase Phase
	cause liberr.Error
}

func (e baseErr) ConnectPhase() Phase { return e.phase }
func (e baseErr) Unwrap() error       { return e.cause }
func (e baseErr) Error() string {
	if e.cause == nil {
		return string(e.phase)
	}
	return fmt.Sprintf("%s: %s", e.phase, e.cause.Error())
}

// ErrNoPeerAvailable wraps peer.ErrorNoPeerAvailable at PhaseSelect.
type ErrNoPeerAvailable struct{ baseErr }

func newNoPeerAvailable(cause liberr.Error) TcpConnectError {
	return ErrNoPeerAvailable{baseErr{phase: PhaseSelect, cause: cause}}
}

// ErrConnect wraps any transport.DialTCP/DialQUIC classification
// (ErrorConnectTimeout/ErrorConnectRefused/ErrorConnectUnreachable) at
// PhaseDial.
type ErrConnect struct{ baseErr }

func newConnect(cause liberr.Error) TcpConnectError {
	return ErrConnect{baseErr{phase: PhaseDial, cause: cause}}
}

// ErrNegotiation wraps any httpconnect negotiation failure
// (write/read/protocol/rejected) at PhaseTunnelNegotiate.
type ErrNegotiation struct {
	baseErr
	Status int
}

func newNegotiation(cause liberr.Error, status int) TcpConnectError {
	return ErrNegotiation{baseErr{phase: PhaseTunnelNegotiate, cause: cause}, status}
}

// ErrNegotiationPeerTimeout reports that the peer_negotiation_timeout
// budget for the CONNECT exchange elapsed before completion.
type ErrNegotiationPeerTimeout struct{ baseErr }

func newNegotiationPeerTimeout(cause liberr.Error) TcpConnectError {
	return ErrNegotiationPeerTimeout{baseErr{phase: PhaseTunnelNegotiate, cause: cause}}
}

// ErrTlsHandshake wraps tlsengine.ErrorHandshakeFailed /
// ErrorHandshakeTimeout, tagged with the TLS application it occurred
// on: ProxyLeg or OriginLeg through a proxy, TcpStream for a direct
// origin handshake. Internal configuration errors are reported as
// ErrInternalConfig instead.
type ErrTlsHandshake struct {
	baseErr
	Application TlsApplication
	Timeout     bool
}

func newTlsHandshake(cause liberr.Error, app TlsApplication, phase Phase, timeout bool) TcpConnectError {
	return ErrTlsHandshake{baseErr{phase: phase, cause: cause}, app, timeout}
}

// ErrInternalConfig reports a pre-TLS configuration bug (nil TLS
// config, empty escaper config) that no retry can fix.
type ErrInternalConfig struct{ baseErr }

func newInternalConfig(cause liberr.Error, phase Phase) TcpConnectError {
	return ErrInternalConfig{baseErr{phase: phase, cause: cause}}
}
