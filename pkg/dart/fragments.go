package dart

import "strings"

// Fragments reconstructs the matchable literal substrings of a string
// node. Every literal segment is reported individually, and every run of
// two or more consecutive literal segments (literals split only by an
// adjacent-string boundary, or left intact around interpolation) is
// additionally reported as its concatenation, so a path interrupted only
// at a variable keeps a joined suffix or prefix to match against.
func Fragments(sections [][]StringPart) []string {
	var parts []StringPart
	for _, s := range sections {
		parts = append(parts, s...)
	}

	var frags []string
	var run []string
	flush := func() {
		if len(run) > 1 {
			frags = append(frags, strings.Join(run, ""))
		}
		run = run[:0]
	}
	for _, p := range parts {
		if p.Expr != nil {
			flush()
			continue
		}
		if p.Text == "" {
			continue
		}
		frags = append(frags, p.Text)
		run = append(run, p.Text)
	}
	flush()
	return frags
}
