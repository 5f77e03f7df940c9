package preprocessor

import (
	"os"
	"path/filepath"
	"strings"
)

// extractHeaderName parses the text that follows "#include" on a
// directive line into a header name and whether it was quoted (a local,
// "-style include) rather than angle-bracketed (a system, <>-style one).
func extractHeaderName(rest string) (name string, quoted bool, ok bool) {
	i := 0
	for i < len(rest) && rest[i] == ' ' {
		i++
	}
	if i >= len(rest) {
		return "", false, false
	}
	switch rest[i] {
	case '"':
		end := strings.IndexByte(rest[i+1:], '"')
		if end < 0 {
			return "", false, false
		}
		return rest[i+1 : i+1+end], true, true
	case '<':
		end := strings.IndexByte(rest[i+1:], '>')
		if end < 0 {
			return "", false, false
		}
		return rest[i+1 : i+1+end], false, true
	}
	return "", false, false
}

func statFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// resolveInclude looks for name along includePaths first (both quoted
// and angle-bracketed forms), then, for a quoted include, relative to
// the directory of the file doing the including, then as a bare path.
func resolveInclude(name string, quoted bool, fromDir string, includePaths []string) (string, bool) {
	for _, dir := range includePaths {
		if p := filepath.Join(dir, name); statFile(p) {
			return p, true
		}
	}
	if quoted && fromDir != "" {
		if p := filepath.Join(fromDir, name); statFile(p) {
			return p, true
		}
	}
	if quoted && statFile(name) {
		return name, true
	}
	return "", false
}

// ResolveIncludes replaces every #include line reachable from code with
// the included file's own (recursively resolved) text, wrapped in
// #file "PATH" / #endfile sentinels so later stages can tell which
// physical file a line came from and can skip over included text when
// counting configuration guards.
//
// A header is expanded at most once per call, keyed by its case-folded
// header name as written on the #include line (not its resolved path):
// this is a deliberate over-approximation carried over from the
// original, which dedups by name alone, so two distinct directories
// that both contain a "util.h" are treated as the same header. This
// both breaks include cycles and matches the usual expectation that a
// header carries its own include guard.
func ResolveIncludes(code, filename string, includePaths []string) string {
	handled := map[string]bool{}
	return resolveIncludesIn(code, filepath.Dir(filename), includePaths, handled)
}

func resolveIncludesIn(code, dir string, includePaths []string, handled map[string]bool) string {
	var out strings.Builder
	pos := 0
	for {
		idx := strings.Index(code[pos:], "#include")
		if idx < 0 {
			out.WriteString(code[pos:])
			break
		}
		start := pos + idx
		if start > 0 && code[start-1] != '\n' {
			out.WriteString(code[pos : start+8])
			pos = start + 8
			continue
		}

		nl := strings.IndexByte(code[start:], '\n')
		lineEnd := len(code)
		if nl >= 0 {
			lineEnd = start + nl
		}
		line := code[start:lineEnd]

		out.WriteString(code[pos:start])

		name, quoted, ok := extractHeaderName(line[len("#include"):])
		if !ok {
			out.WriteString(line)
			pos = lineEnd
			continue
		}

		resolved, found := resolveInclude(name, quoted, dir, includePaths)
		if !found {
			out.WriteString(line)
			pos = lineEnd
			continue
		}

		key := strings.ToLower(name)
		if handled[key] {
			pos = lineEnd
			continue
		}
		handled[key] = true

		data, err := os.ReadFile(resolved)
		if err != nil {
			out.WriteString(line)
			pos = lineEnd
			continue
		}

		included := Read(strings.NewReader(string(data)))
		included = TabsToSpaces(included)
		included = StripLeadingIndent(included)
		included = RemoveSpaceNearNewlines(included)
		included = resolveIncludesIn(included, filepath.Dir(resolved), includePaths, handled)

		out.WriteString(`#file "`)
		out.WriteString(resolved)
		out.WriteString("\"\n")
		out.WriteString(included)
		out.WriteString("\n#endfile")

		pos = lineEnd
	}
	return out.String()
}
