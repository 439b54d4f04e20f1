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

package failurelog

import (
	liblog "github.com/nabbar/g3egress/logger"
	loglvl "github.com/nabbar/g3egress/logger/level"
)

// Logger is the one-method surface consumed by the egress orchestrator.
// Every call emits exactly one record; there is no sampling here, as
// sampling (if any) belongs to the underlying log transport.
type Logger interface {
	LogFailure(rec Record)
}

type adapter struct {
	log liblog.Logger
}

// New wraps a structured logger into a failurelog.Logger. Passing a nil
// logger yields a no-op implementation so callers never need a nil
// check of their own.
func New(log liblog.Logger) Logger {
	return &adapter{log: log}
}

func (a *adapter) LogFailure(rec Record) {
	if a == nil || a.log == nil {
		return
	}

	e := a.log.Entry(loglvl.ErrorLevel, "upstream connect failure").
		FieldAdd("task_id", rec.TaskID).
		FieldAdd("upstream", rec.Upstream).
		FieldAdd("tls_peer", rec.TlsPeer).
		FieldAdd("tls_name", rec.TlsName).
		FieldAdd("tls_application", string(rec.Application)).
		FieldAdd("phase", rec.Phase)

	if rec.Reason != nil {
		e = e.ErrorAdd(true, rec.Reason)
	}

	e.Log()
}
