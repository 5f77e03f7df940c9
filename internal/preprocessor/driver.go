package preprocessor

import (
	"io"
	"sync"

	. "github.com/puzpuzpuz/xsync"
)

// configResults guards the per-ConfigString result map shared by the
// goroutines Preprocess fans out across configurations. Writes (one per
// configuration, each touching a distinct key) take the write lock;
// snapshot takes it too since it needs every entry to be settled, not a
// read-lock pass over a map that might still be growing.
type configResults struct {
	RBMutex
	m map[string]string
}

func newConfigResults() *configResults {
	return &configResults{m: make(map[string]string)}
}

func (c *configResults) set(k, v string) {
	c.Lock()
	c.m[k] = v
	c.Unlock()
}

func (c *configResults) snapshot() map[string]string {
	c.Lock()
	out := make(map[string]string, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	c.Unlock()
	return out
}

// NormalizeSource runs every pipeline stage up through #if defined(X)
// rewriting: newline/comment/whitespace normalization, #include
// resolution, and the defined(X) shorthand rewrite. This is the exact
// prefix EnumerateConfigs needs to see accurate guards, so any caller
// that enumerates or lists configurations ahead of a full Preprocess run
// must go through this rather than re-deriving its own subset of stages.
func NormalizeSource(r io.Reader, filename string, includePaths []string) string {
	code := Read(r)
	code = TabsToSpaces(code)
	code = StripLeadingIndent(code)
	code = RemoveSpaceNearNewlines(code)
	code = ResolveIncludes(code, filename, includePaths)
	code = ReplaceIfDefined(code)
	return code
}

// Preprocess runs the full pipeline over r: normalize, resolve includes,
// rewrite the #if defined(X) shorthand, enumerate every ConfigString the
// source's guards admit, then materialize and macro-expand each one. The
// result maps each ConfigString to its fully macro-expanded text.
//
// Configurations are materialized and expanded concurrently, one
// goroutine per ConfigString, per the engine's concurrency contract: the
// core itself stays single-threaded, and any parallelism is the caller's
// to add at this granularity. Diagnostics from any configuration's
// expansion are reported to sink; a malformed literal empties that one
// configuration's result rather than aborting the rest.
func Preprocess(r io.Reader, filename string, includePaths []string, sink ErrorSink) (map[string]string, error) {
	code := NormalizeSource(r, filename, includePaths)

	configs := EnumerateConfigs(code)
	results := newConfigResults()

	var wg sync.WaitGroup
	for _, cfg := range configs {
		wg.Add(1)
		go func(cfg string) {
			defer wg.Done()
			materialized := Materialize(code, cfg)
			expanded := ExpandMacros(materialized, filename, sink)
			results.set(cfg, expanded)
		}(cfg)
	}
	wg.Wait()

	return results.snapshot(), nil
}
