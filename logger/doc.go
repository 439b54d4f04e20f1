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

/*
Package logger provides the structured logging facade used throughout this
module: a chainable Entry builder on top of logrus, level-gated helpers
(Debug/Info/Warning/Error/Fatal/Panic), default field injection, and an
io.WriteCloser adapter so the logger can stand in for any writer-based
third-party logging hook.

Routing log entries to files, syslog or any other external transport is
outside this package's scope; SetOptions only ever arranges the always
available stderr sink, colorized unless OptionsStd.DisableColor is set.

	l := logger.New(ctx)
	l.SetLevel(loglvl.InfoLevel)
	l.Entry(loglvl.InfoLevel, "dialing %s", "peer-1").FieldAdd("peer", "peer-1").Log()
*/
package logger
