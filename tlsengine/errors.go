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

// Package tlsengine performs the outbound TLS handshake to an upstream
// peer, wrapping the certificate/cipher configuration machinery with a
// handshake deadline and a structured timeout/failure outcome.
package tlsengine

import (
	liberr "github.com/nabbar/g3egress/errors"
)

const (
	// ErrorHandshakeFailed is returned on a peer-reported TLS error or
	// certificate verification failure.
	ErrorHandshakeFailed liberr.CodeError = liberr.MinPkgTlsEngine + iota + 1
	// ErrorHandshakeTimeout is returned when the handshake does not
	// complete before the configured timeout.
	ErrorHandshakeTimeout
	// ErrorInternalConfig flags a configuration bug (nil config, empty
	// SNI where one is required) caught before a handshake is attempted.
	ErrorInternalConfig
)

func init() {
	if !liberr.ExistInMapMessage(ErrorHandshakeFailed) {
		liberr.RegisterIdFctMessage(ErrorHandshakeFailed, getMessage)
	}
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorHandshakeFailed:
		return "TLS handshake failed"
	case ErrorHandshakeTimeout:
		return "TLS handshake timed out"
	case ErrorInternalConfig:
		return "invalid TLS client configuration"
	}

	return liberr.NullMessage
}
