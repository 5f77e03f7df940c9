/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cppre is a heuristic C/C++ source preprocessor front end. It
// turns a translation unit into one fully macro-expanded text per
// reachable build configuration, without needing the compiler's own
// symbol table or type information.
//
// The pipeline normalizes raw source text, resolves #include directives
// against a search path, enumerates every distinct combination of
// #ifdef/#ifndef/#if guards the source admits (a ConfigString), then
// materializes and macro-expands the source once per configuration.
package cppre

import (
	"io"

	"github.com/cppre/cppre/internal/preprocessor"
)

// Severity classifies a diagnostic reported through an ErrorSink.
type Severity = preprocessor.Severity

const (
	SeverityError   = preprocessor.SeverityError
	SeverityWarning = preprocessor.SeverityWarning
)

// Location identifies where a diagnostic applies.
type Location = preprocessor.Location

// ErrorSink is the collaborator the engine reports diagnostics through.
// Callers own the sink; the engine never builds one itself.
type ErrorSink = preprocessor.ErrorSink

// NoQuoteCharPair is the id of the one diagnostic the engine can raise:
// an unterminated string or character literal encountered while
// expanding a macro.
const NoQuoteCharPair = preprocessor.NoQuoteCharPair

// CollectingSink accumulates every reported diagnostic, for tests and
// for callers that want to inspect results before deciding what to do
// with them.
type CollectingSink = preprocessor.CollectingSink

// Message is one diagnostic captured by a CollectingSink.
type Message = preprocessor.Message

// WriterSink formats each diagnostic to an io.Writer as it arrives.
type WriterSink = preprocessor.WriterSink

// Preprocess runs the full pipeline over r and returns one fully
// macro-expanded text per reachable ConfigString, keyed by that string
// (the empty string is always present: it is the baseline configuration
// with every #ifdef left untaken). filename anchors relative #include
// resolution and is used for diagnostics; includePaths is searched, in
// order, before falling back to filename's own directory.
func Preprocess(r io.Reader, filename string, includePaths []string, sink ErrorSink) (map[string]string, error) {
	return preprocessor.Preprocess(r, filename, includePaths, sink)
}

// Read normalizes a raw byte stream: newline folding, comment stripping,
// whitespace collapse, literal pass-through, and backslash-newline
// splicing. It is exported for callers that want to run the pipeline's
// stages individually.
func Read(r io.Reader) string {
	return preprocessor.Read(r)
}

// NormalizeSource runs the pipeline's normalization prefix over r: Read,
// tab/indent/whitespace cleanup, #include resolution, and the #if
// defined(X) rewrite. Preprocess uses it internally; callers that need
// to inspect configuration guards ahead of a full run (for example, to
// list them) should call it too rather than reimplementing the prefix,
// since EnumerateConfigs only sees accurate guards once every stage up
// to and including ReplaceIfDefined has run.
func NormalizeSource(r io.Reader, filename string, includePaths []string) string {
	return preprocessor.NormalizeSource(r, filename, includePaths)
}

// ResolveIncludes replaces every #include line reachable from code with
// the included file's own text, recursively resolved the same way.
func ResolveIncludes(code, filename string, includePaths []string) string {
	return preprocessor.ResolveIncludes(code, filename, includePaths)
}

// EnumerateConfigs returns every ConfigString the source's #ifdef,
// #ifndef, #if, #elif, #else and #endif guards admit.
func EnumerateConfigs(code string) []string {
	return preprocessor.EnumerateConfigs(code)
}

// Materialize renders code under a single ConfigString, blanking any
// line whose guard the configuration does not satisfy while preserving
// line count exactly.
func Materialize(code, cfg string) string {
	return preprocessor.Materialize(code, cfg)
}

// ExpandMacros runs the macro engine over a single materialized
// configuration's text. filename is used only for diagnostics reported
// to sink.
func ExpandMacros(code, filename string, sink ErrorSink) string {
	return preprocessor.ExpandMacros(code, filename, sink)
}
