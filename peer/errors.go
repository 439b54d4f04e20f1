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

// Package peer implements weighted selection over a resolved upstream
// address set.
package peer

import (
	liberr "github.com/nabbar/g3egress/errors"
)

const (
	// ErrorNoPeerAvailable is returned when the resolved set is empty.
	ErrorNoPeerAvailable liberr.CodeError = liberr.MinPkgPeer + iota + 1
	ErrorInvalidWeight
)

func init() {
	if !liberr.ExistInMapMessage(ErrorNoPeerAvailable) {
		liberr.RegisterIdFctMessage(ErrorNoPeerAvailable, getMessage)
	}
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorNoPeerAvailable:
		return "resolved peer set is empty"
	case ErrorInvalidWeight:
		return "peer weight must be a positive integer"
	}

	return liberr.NullMessage
}
