package stages

import (
	"regexp"
	"sort"
	"strings"
)

var (
	importRe     = regexp.MustCompile(`\bimport\b\s*(?:[^'";]*?\bfrom\s*)?['"]([^'"\n]+)['"]`)
	exportFromRe = regexp.MustCompile(`\bexport\b\s*(?:\*\s*(?:as\s+[\w$]+\s*)?|\{[^}]*\}\s*)from\s*['"]([^'"\n]+)['"]`)
	requireRe    = regexp.MustCompile(`\brequire\(\s*['"]([^'"\n]+)['"]\s*\)`)

	defaultBindingRe = regexp.MustCompile(`^import\s+([\w$]+)\s*(?:,|\s+from\b)`)
)

// scanImports returns every static import, re-export and require specifier in
// first-seen order.
func scanImports(code string) []string {
	type hit struct {
		pos  int
		spec string
	}
	var hits []hit
	masked := maskComments(code)
	for _, re := range []*regexp.Regexp{importRe, exportFromRe, requireRe} {
		for _, loc := range re.FindAllStringSubmatchIndex(masked, -1) {
			hits = append(hits, hit{pos: loc[2], spec: code[loc[2]:loc[3]]})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool, len(hits))
	var specs []string
	for _, h := range hits {
		if seen[h.spec] {
			continue
		}
		seen[h.spec] = true
		specs = append(specs, h.spec)
	}
	return specs
}

// rewriteImports hands each specifier to fn, which returns the replacement
// specifier or drop to remove the import. A dropped default import keeps its
// binding as an empty object.
func rewriteImports(code string, fn func(spec string) (string, bool)) string {
	for _, re := range []*regexp.Regexp{importRe, exportFromRe, requireRe} {
		locs := re.FindAllStringSubmatchIndex(maskComments(code), -1)
		for i := len(locs) - 1; i >= 0; i-- {
			loc := locs[i]
			spec := code[loc[2]:loc[3]]
			replacement, drop := fn(spec)

			switch {
			case drop && re == importRe:
				stmt := ""
				if m := defaultBindingRe.FindStringSubmatch(code[loc[0]:loc[1]]); m != nil {
					stmt = "var " + m[1] + " = {}"
				}
				code = code[:loc[0]] + stmt + code[loc[1]:]
			case drop && re == requireRe:
				code = code[:loc[0]] + "{}" + code[loc[1]:]
			case !drop && replacement != spec:
				code = code[:loc[2]] + replacement + code[loc[3]:]
			}
		}
	}
	return code
}

// maskComments blanks out line and block comments, keeping newlines and every
// byte offset. String literals are left alone so "//" inside one survives.
func maskComments(code string) string {
	buf := []byte(code)
	blank := func(from, to int) {
		for k := from; k < to; k++ {
			if buf[k] != '\n' {
				buf[k] = ' '
			}
		}
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '/' && i+1 < len(code) && code[i+1] == '/':
			end := strings.IndexByte(code[i:], '\n')
			if end < 0 {
				end = len(code) - i
			}
			blank(i, i+end)
			i += end
		case c == '/' && i+1 < len(code) && code[i+1] == '*':
			end := strings.Index(code[i+2:], "*/")
			if end < 0 {
				blank(i, len(code))
				return string(buf)
			}
			blank(i, i+end+4)
			i += end + 3
		case c == '\'' || c == '"' || c == '`':
			i = skipString(code, i)
		}
	}
	return string(buf)
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// topLevelThis reports whether the keyword this occurs outside every brace
// pair, strings and comments.
func topLevelThis(code string) bool {
	depth := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '/' && i+1 < len(code) && code[i+1] == '/':
			for i < len(code) && code[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(code) && code[i+1] == '*':
			end := strings.Index(code[i+2:], "*/")
			if end < 0 {
				return false
			}
			i += end + 3
		case c == '\'' || c == '"' || c == '`':
			i = skipString(code, i)
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case depth == 0 && c == 't' && strings.HasPrefix(code[i:], "this"):
			before := i == 0 || !isIdentByte(code[i-1])
			after := i+4 >= len(code) || !isIdentByte(code[i+4])
			if before && after {
				return true
			}
		}
	}
	return false
}

// skipString returns the index of the quote closing the string opened at i.
func skipString(code string, i int) int {
	quote := code[i]
	for j := i + 1; j < len(code); j++ {
		switch code[j] {
		case '\\':
			j++
		case quote:
			return j
		case '\n':
			if quote != '`' {
				return j
			}
		}
	}
	return len(code) - 1
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
