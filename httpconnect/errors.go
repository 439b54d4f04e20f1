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

// Package httpconnect negotiates an HTTP CONNECT tunnel over an
// existing byte stream and surfaces any bytes the peer pipelined past
// the response headers.
package httpconnect

import (
	liberr "github.com/nabbar/g3egress/errors"
)

const (
	// ErrorNegotiationWriteFailed is returned when sending the CONNECT
	// request itself fails.
	ErrorNegotiationWriteFailed liberr.CodeError = liberr.MinPkgHttpConnect + iota + 1
	// ErrorNegotiationReadFailed is returned on a read failure or EOF
	// while the response headers are still incomplete.
	ErrorNegotiationReadFailed
	// ErrorNegotiationProtocolError is returned for malformed headers or
	// a header block exceeding the configured cap.
	ErrorNegotiationProtocolError
	// ErrorNegotiationRejected is returned when the response status is
	// not in the accepted set.
	ErrorNegotiationRejected
)

func init() {
	if !liberr.ExistInMapMessage(ErrorNegotiationWriteFailed) {
		liberr.RegisterIdFctMessage(ErrorNegotiationWriteFailed, getMessage)
	}
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorNegotiationWriteFailed:
		return "writing CONNECT request failed"
	case ErrorNegotiationReadFailed:
		return "reading CONNECT response failed"
	case ErrorNegotiationProtocolError:
		return "CONNECT response headers are malformed or exceed the size cap"
	case ErrorNegotiationRejected:
		return "CONNECT request rejected by peer"
	}

	return liberr.NullMessage
}
