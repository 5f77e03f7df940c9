package preprocessor

import (
	"fmt"
	"strings"
)

// macro is a single #define binding: its parameter list (empty and nil
// for an object-like macro), whether the last parameter binds a variadic
// tail, and its raw body text.
type macro struct {
	name         string
	params       []string
	variadic     bool
	body         string
	functionLike bool
	bodyTokens   []bodyTok
}

func newMacro(name string, params []string, variadic bool, body string, functionLike bool) *macro {
	m := &macro{name: name, params: params, variadic: variadic, body: body, functionLike: functionLike}
	if functionLike {
		m.bodyTokens = tokenizeMacroBody(body)
	}
	return m
}

// expand renders a function-like macro's body given the raw argument
// text captured at a call site.
func (m *macro) expand(args []string) string {
	return substituteMacroBody(m.bodyTokens, m.params, m.variadic, args)
}

// parseDefine parses the text that follows "#define " on a single
// logical line (no embedded newline; Read has already spliced any
// backslash-continued #define onto one line) into a macro's name,
// parameter list, variadic flag and raw body.
//
// This is the narrow, purpose-built scanner the macro engine uses in
// place of a full tokenizer: it understands exactly enough syntax to
// split a #define header into its name and parameter list, nothing more.
func parseDefine(rest string) (name string, params []string, variadic bool, body string, functionLike bool, ok bool) {
	if rest == "" || !isIdentStartStrict(rest[0]) {
		return "", nil, false, "", false, false
	}
	i := 0
	for i < len(rest) && isIdentPart(rest[i]) {
		i++
	}
	name = rest[:i]

	if i >= len(rest) || rest[i] != '(' {
		return name, nil, false, strings.TrimLeft(rest[i:], " "), false, true
	}

	functionLike = true
	closeRel := strings.IndexByte(rest[i:], ')')
	if closeRel < 0 {
		return name, nil, false, "", true, false
	}
	closeAbs := i + closeRel
	paramList := rest[i+1 : closeAbs]
	body = strings.TrimLeft(rest[closeAbs+1:], " ")

	if strings.TrimSpace(paramList) == "" {
		// An empty parameter list, "NAME() BODY", is treated the same as
		// an object-like "NAME BODY": NAME substitutes wherever it
		// appears, leaving a bare call site's own "()" untouched.
		return name, nil, false, body, false, true
	}

	for _, raw := range strings.Split(paramList, ",") {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		switch {
		case p == "...":
			variadic = true
			params = append(params, "__VA_ARGS__")
		case strings.HasSuffix(p, "..."):
			variadic = true
			params = append(params, strings.TrimSpace(strings.TrimSuffix(p, "...")))
		default:
			params = append(params, p)
		}
	}

	return name, params, variadic, body, functionLike, true
}

type bodyTokKind int

const (
	btIdent bodyTokKind = iota
	btHash
	btHashHash
	btLiteral
	btOther
)

type bodyTok struct {
	kind bodyTokKind
	text string
}

// tokenizeMacroBody splits a function-like macro's raw body into tokens,
// discarding the original whitespace: substituteMacroBody reinserts a
// single space only where gluing two identifiers together would change
// their meaning.
func tokenizeMacroBody(body string) []bodyTok {
	var toks []bodyTok
	i, n := 0, len(body)
	for i < n {
		c := body[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isIdentPart(c):
			j := i + 1
			for j < n && isIdentPart(body[j]) {
				j++
			}
			toks = append(toks, bodyTok{btIdent, body[i:j]})
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < n && body[j] != c {
				if body[j] == '\\' && j+1 < n {
					j++
				}
				j++
			}
			if j < n {
				j++
			}
			toks = append(toks, bodyTok{btLiteral, body[i:j]})
			i = j
		case c == '#' && i+1 < n && body[i+1] == '#':
			toks = append(toks, bodyTok{btHashHash, "##"})
			i += 2
		case c == '#':
			toks = append(toks, bodyTok{btHash, "#"})
			i++
		default:
			toks = append(toks, bodyTok{btOther, string(c)})
			i++
		}
	}
	return toks
}

// substituteMacroBody renders a function-like macro's body given the
// tokenized body, its declared parameters, and the raw argument text
// bound to each one:
//
//   - a parameter occurrence is replaced by its argument text;
//   - the last parameter of a variadic macro is replaced by its
//     remaining arguments joined with ",";
//   - "#param" is replaced by the quoted argument text;
//   - "##" is deleted, letting its neighbors concatenate directly;
//   - ", ##lastparam" drops the comma when the variadic tail is empty.
func substituteMacroBody(toks []bodyTok, params []string, variadic bool, args []string) string {
	var out strings.Builder
	lastIdentLike := false
	pasteNext := false

	paramIndex := func(name string) int {
		for i, p := range params {
			if p == name {
				return i
			}
		}
		return -1
	}

	emit := func(s string, identLike bool) {
		if s == "" {
			return
		}
		if identLike && lastIdentLike && !pasteNext {
			out.WriteByte(' ')
		}
		out.WriteString(s)
		lastIdentLike = identLike
		pasteNext = false
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.kind == btHashHash:
			pasteNext = true

		case t.kind == btOther && t.text == "," && variadic &&
			i+2 < len(toks) && toks[i+1].kind == btHashHash && toks[i+2].kind == btIdent &&
			paramIndex(toks[i+2].text) == len(params)-1:
			tailIdx := len(params) - 1
			var tail []string
			if tailIdx < len(args) {
				tail = args[tailIdx:]
			}
			if len(tail) > 0 {
				emit(",", false)
				emit(strings.Join(tail, ","), true)
			}
			i += 2

		case t.kind == btHash && i+1 < len(toks) && toks[i+1].kind == btIdent && paramIndex(toks[i+1].text) >= 0:
			idx := paramIndex(toks[i+1].text)
			val := ""
			if idx < len(args) {
				val = args[idx]
			}
			emit(`"`+val+`"`, false)
			i++

		case t.kind == btIdent && paramIndex(t.text) >= 0:
			idx := paramIndex(t.text)
			if variadic && idx == len(params)-1 {
				var tail []string
				if idx < len(args) {
					tail = args[idx:]
				}
				emit(strings.Join(tail, ","), len(tail) > 0)
			} else {
				val := ""
				if idx < len(args) {
					val = args[idx]
				}
				emit(val, val != "")
			}

		default:
			emit(t.text, t.kind == btIdent)
		}
	}

	return out.String()
}

// readMacroArgs parses a call site's argument list starting at the "("
// that follows a function-like macro's name, splitting on top-level
// commas, respecting nested parens and literals, and dropping the spaces
// inside each argument. It returns the accumulated arguments, the index
// of the matching ")" and the number of newlines crossed, or ok=false on
// an unbalanced call.
func readMacroArgs(code string, openParen int) (args []string, closeParen int, newlines int, ok bool) {
	parlevel := 0
	var par strings.Builder

	for pos := openParen; pos < len(code); pos++ {
		c := code[pos]

		switch {
		case c == '(':
			parlevel++
			if parlevel == 1 {
				continue
			}
		case c == ')':
			parlevel--
			if parlevel <= 0 {
				args = append(args, par.String())
				return args, pos, newlines, true
			}
		case c == '"' || c == '\'':
			quote := c
			par.WriteByte(c)
			pos++
			for pos < len(code) && code[pos] != quote {
				par.WriteByte(code[pos])
				if code[pos] == '\\' {
					pos++
					if pos < len(code) {
						par.WriteByte(code[pos])
					}
				}
				pos++
			}
			if pos >= len(code) {
				return nil, 0, 0, false
			}
			par.WriteByte(code[pos])
			continue
		case c == '\n':
			newlines++
		}

		switch {
		case parlevel == 1 && c == ',':
			args = append(args, par.String())
			par.Reset()
		case c == ' ':
			// spaces inside arguments are dropped
		case parlevel >= 1:
			par.WriteByte(c)
		}
	}

	return nil, 0, 0, false
}

func macroNameFollowsAt(rest, name string) bool {
	if !strings.HasPrefix(rest, name) {
		return false
	}
	if len(rest) > len(name) && isIdentPart(rest[len(name)]) {
		return false
	}
	return true
}

// scanAndExpand expands every call to macro m found after defpos, in
// place, stopping early (without error) at a #undef or #define that
// shadows m's own name — the point beyond which m no longer applies.
func scanAndExpand(code string, defpos int, m *macro, filename string, sink ErrorSink) (string, bool) {
	pos1 := defpos
	for {
		pos1++
		if pos1 >= len(code) {
			break
		}
		ch := code[pos1]

		if ch == '#' {
			rest := code[pos1+1:]
			switch {
			case strings.HasPrefix(rest, "undef ") && macroNameFollowsAt(rest[len("undef "):], m.name):
				return code, true
			case strings.HasPrefix(rest, "define ") && macroNameFollowsAt(rest[len("define "):], m.name):
				return code, true
			}
			continue
		}

		if ch == '"' || ch == '\'' {
			quote := ch
			j := pos1 + 1
			unterminated := false
			for {
				if j >= len(code) {
					unterminated = true
					break
				}
				if code[j] == quote {
					break
				}
				if code[j] == '\\' {
					j++
				}
				j++
			}
			if unterminated {
				if sink != nil {
					sink.Report(Location{File: filename}, SeverityError, NoQuoteCharPair,
						fmt.Sprintf("No pair for character (%c). Can't process file. File is either invalid or unicode, which is currently not supported.", quote))
				}
				return "", false
			}
			pos1 = j
			continue
		}

		if !strings.HasPrefix(code[pos1:], m.name) {
			continue
		}
		if pos1 != 0 && isIdentPart(code[pos1-1]) {
			continue
		}
		end := pos1 + len(m.name)
		if end < len(code) && isIdentPart(code[end]) {
			continue
		}

		if m.functionLike {
			if end >= len(code) || code[end] != '(' {
				continue
			}
			args, closeParen, newlines, ok := readMacroArgs(code, end)
			if !ok {
				continue
			}
			if !m.variadic && len(args) != len(m.params) {
				continue
			}
			replacement := strings.Repeat("\n", newlines) + m.expand(args)
			code = code[:pos1] + replacement + code[closeParen+1:]
			pos1 += len(replacement) - 1
		} else {
			replacement := strings.TrimPrefix(m.body, " ")
			code = code[:pos1] + replacement + code[end:]
			pos1 += len(replacement) - 1
		}
	}
	return code, true
}

// stripUndefLines blanks every "#undef NAME" line, keeping the newline
// so line numbers downstream stay aligned with the original source.
func stripUndefLines(code string) string {
	for {
		idx := strings.Index(code, "\n#undef ")
		if idx < 0 {
			break
		}
		start := idx + 1
		end := strings.IndexByte(code[start:], '\n')
		if end < 0 {
			code = code[:start]
			break
		}
		code = code[:start] + code[start+end:]
	}
	return code
}

// ExpandMacros drives the whole macro engine over a single materialized
// configuration: every #define is parsed in turn, its occurrences
// expanded up to the point (if any) where it is shadowed, and its own
// definition line blanked out once consumed. filename is only used for
// diagnostics. A malformed literal aborts the whole pass and returns "".
func ExpandMacros(code, filename string, sink ErrorSink) string {
	pos := 0
	for {
		idx := strings.Index(code[pos:], "#define ")
		if idx < 0 {
			break
		}
		defpos := pos + idx
		if defpos > 0 && code[defpos-1] != '\n' {
			pos = defpos + 8
			continue
		}

		nl := strings.IndexByte(code[defpos+8:], '\n')
		if nl < 0 {
			code = code[:defpos]
			break
		}
		endpos := defpos + 8 + nl

		rest := code[defpos+8 : endpos]
		name, params, variadic, body, functionLike, parsed := parseDefine(rest)
		code = code[:defpos] + code[endpos:]
		if !parsed || name == "" {
			pos = defpos
			continue
		}

		m := newMacro(name, params, variadic, body, functionLike)

		var ok bool
		code, ok = scanAndExpand(code, defpos, m, filename, sink)
		if !ok {
			return ""
		}

		pos = defpos
	}

	return stripUndefLines(code)
}
