package preprocessor

import "strings"

// getDef extracts the ConfigString token guarded by an #ifdef/#if/#elif
// line (def true) or an #ifndef line (def false); it returns "" when the
// line is not of the requested shape.
func getDef(line string, def bool) string {
	if def {
		if !strings.HasPrefix(line, "#ifdef ") && !strings.HasPrefix(line, "#if ") && !strings.HasPrefix(line, "#elif ") {
			return ""
		}
	} else {
		if !strings.HasPrefix(line, "#ifndef ") {
			return ""
		}
	}
	idx := strings.Index(line, " ")
	line = line[idx:]
	return strings.ReplaceAll(line, " ", "")
}

// buildConfigString joins the active guard stack into a ConfigString,
// stopping at the first "0" (a branch made permanently dead by a prior
// guard) and skipping every "1" (a branch that is unconditionally live
// and so contributes nothing to the name).
func buildConfigString(deflist []string) string {
	var b strings.Builder
	for _, d := range deflist {
		if d == "0" {
			break
		}
		if d == "1" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(d)
	}
	return b.String()
}

func containsConfig(cfgs []string, s string) bool {
	for _, c := range cfgs {
		if c == s {
			return true
		}
	}
	return false
}

// EnumerateConfigs walks the #ifdef/#ifndef/#if/#elif/#else/#endif guard
// structure of text, ignoring anything inside an included file (tracked
// via #file/#endfile depth), and returns every distinct ConfigString
// reachable by some combination of guards, always including "" for the
// unconditional baseline.
func EnumerateConfigs(text string) []string {
	ret := []string{""}
	var deflist []string
	filelevel := 0

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "#file "):
			filelevel++
			continue
		case line == "#endfile":
			if filelevel > 0 {
				filelevel--
			}
			continue
		}
		if filelevel > 0 {
			continue
		}

		def := getDef(line, true) + getDef(line, false)
		if def != "" {
			if len(deflist) > 0 && strings.HasPrefix(line, "#elif ") {
				deflist = deflist[:len(deflist)-1]
			}
			deflist = append(deflist, def)
			cfg := buildConfigString(deflist)
			if !containsConfig(ret, cfg) {
				ret = append(ret, cfg)
			}
		}

		if strings.HasPrefix(line, "#else") && len(deflist) > 0 {
			top := deflist[len(deflist)-1]
			if top == "1" {
				deflist[len(deflist)-1] = "0"
			} else {
				deflist[len(deflist)-1] = "1"
			}
		}
		if strings.HasPrefix(line, "#endif") && len(deflist) > 0 {
			deflist = deflist[:len(deflist)-1]
		}
	}

	return ret
}

// matchCfgDef reports whether the guard token def is satisfied by cfg,
// where "0" never matches, "1" always matches, and any other token
// matches when it appears as one of cfg's ";"-separated entries.
func matchCfgDef(cfg, def string) bool {
	switch def {
	case "0":
		return false
	case "1":
		return true
	}
	if cfg == "" {
		return false
	}
	for _, part := range strings.Split(cfg, ";") {
		if part == def {
			return true
		}
	}
	return false
}

// Materialize renders text under a single ConfigString: directive lines
// not needed downstream (#ifdef, #ifndef, #if, #elif, #else, #endif, and
// anything else starting with '#' other than #file/#endfile/#define) are
// blanked out, and any line inside a branch that cfg does not satisfy is
// blanked out too. Line count is preserved exactly, so byte offsets
// reported against the original source still land on the right line.
func Materialize(text, cfg string) string {
	var out strings.Builder

	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var matchingIfdef []bool
	var matchedIfdef []bool
	match := true

	for _, line := range lines {
		def := getDef(line, true)
		ndef := getDef(line, false)

		switch {
		case strings.HasPrefix(line, "#elif "):
			if len(matchedIfdef) > 0 && matchedIfdef[len(matchedIfdef)-1] {
				matchingIfdef[len(matchingIfdef)-1] = false
			} else if matchCfgDef(cfg, def) {
				matchingIfdef[len(matchingIfdef)-1] = true
				matchedIfdef[len(matchedIfdef)-1] = true
			}
		case def != "":
			m := matchCfgDef(cfg, def)
			matchingIfdef = append(matchingIfdef, m)
			matchedIfdef = append(matchedIfdef, m)
		case ndef != "":
			m := !matchCfgDef(cfg, ndef)
			matchingIfdef = append(matchingIfdef, m)
			matchedIfdef = append(matchedIfdef, m)
		case line == "#else":
			if len(matchedIfdef) > 0 {
				matchingIfdef[len(matchingIfdef)-1] = !matchedIfdef[len(matchedIfdef)-1]
			}
		case strings.HasPrefix(line, "#endif"):
			if len(matchedIfdef) > 0 {
				matchedIfdef = matchedIfdef[:len(matchedIfdef)-1]
			}
			if len(matchingIfdef) > 0 {
				matchingIfdef = matchingIfdef[:len(matchingIfdef)-1]
			}
		}

		if line != "" && line[0] == '#' {
			match = true
			for _, m := range matchingIfdef {
				match = match && m
			}
		}

		switch {
		case strings.HasPrefix(line, `#file "`), strings.HasPrefix(line, "#endfile"), strings.HasPrefix(line, "#define"):
			// kept verbatim: include bookkeeping and macro definitions
			// both still have downstream consumers.
		case !match || (line != "" && line[0] == '#'):
			line = ""
		}

		out.WriteString(line)
		out.WriteByte('\n')
	}

	return out.String()
}
