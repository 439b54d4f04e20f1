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
	liberr "github.com/nabbar/g3egress/errors"
)

const (
	errorInvalidURI liberr.CodeError = liberr.MinPkgH3Bench + iota + 1
	errorUnsupportedScheme
	errorInvalidMethod
	errorInvalidLocalAddress
	errorMutuallyExclusiveFlags
	errorInvalidOkStatus
	errorInvalidDuration
)

func init() {
	if !liberr.ExistInMapMessage(errorInvalidURI) {
		liberr.RegisterIdFctMessage(errorInvalidURI, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case errorInvalidURI:
		return "invalid uri value"
	case errorUnsupportedScheme:
		return "unsupported target url scheme"
	case errorInvalidMethod:
		return "unsupported request method"
	case errorInvalidLocalAddress:
		return "invalid local-address value"
	case errorMutuallyExclusiveFlags:
		return "connection-pool and no-multiplex are mutually exclusive"
	case errorInvalidOkStatus:
		return "invalid ok-status value"
	case errorInvalidDuration:
		return "invalid duration value"
	}

	return liberr.NullMessage
}
