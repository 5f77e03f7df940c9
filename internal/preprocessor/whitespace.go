package preprocessor

import "strings"

// TabsToSpaces replaces every tab with a single space, including tabs
// inside string and character literals. Read leaves literal content
// untouched, so this blind pass is the only place tabs there get folded.
func TabsToSpaces(code string) string {
	return strings.ReplaceAll(code, "\t", " ")
}

// StripLeadingIndent drops a run of leading spaces at the very start of
// the text.
func StripLeadingIndent(code string) string {
	if strings.HasPrefix(code, " ") {
		return strings.TrimLeft(code, " ")
	}
	return code
}

// RemoveSpaceNearNewlines drops any space byte that sits directly next to
// a newline, on either side.
func RemoveSpaceNearNewlines(code string) string {
	out := make([]byte, 0, len(code))
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == ' ' {
			precededByNL := len(out) > 0 && out[len(out)-1] == '\n'
			followedByNL := i+1 < len(code) && code[i+1] == '\n'
			if precededByNL || followedByNL {
				continue
			}
		}
		out = append(out, c)
	}
	return string(out)
}
