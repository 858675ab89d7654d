package unused

import (
	"regexp"

	"github.com/fluttertools/winnow/pkg/dart"
)

// DeclKind separates the two declaration tables. Counts are kept per
// kind even though the identifier census is not.
type DeclKind string

const (
	DeclClass  DeclKind = "class"
	DeclMethod DeclKind = "method"
)

// Declaration is one declaration site.
type Declaration struct {
	Kind DeclKind `json:"kind"`
	Name string   `json:"name"`
	Line int      `json:"line"`
}

// FileIndex is everything the resolver needs from one source file:
// declaration sites, the per-lexeme identifier census, import/export
// URIs, and reconstructed string fragments. It is self-contained and
// JSON-serializable so it can be cached between runs.
type FileIndex struct {
	File      string         `json:"file"`
	Decls     []Declaration  `json:"decls,omitempty"`
	Idents    map[string]int `json:"idents,omitempty"`
	Imports   []string       `json:"imports,omitempty"`
	Fragments []string       `json:"fragments,omitempty"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IndexFile parses one source file and extracts its analysis index. The
// path should already be project-relative with forward slashes. Parse
// diagnostics are ignored: a broken file contributes whatever could be
// recovered.
func IndexFile(relPath, src string) *FileIndex {
	f := dart.Parse(relPath, src)
	idx := &FileIndex{File: relPath, Idents: make(map[string]int)}

	f.Walk(func(n *dart.Node) {
		switch n.Kind {
		case dart.NodeClass:
			idx.Decls = append(idx.Decls, Declaration{Kind: DeclClass, Name: n.Name, Line: n.Line})
		case dart.NodeMethod:
			idx.Decls = append(idx.Decls, Declaration{Kind: DeclMethod, Name: n.Name, Line: n.Line})
		case dart.NodeImport, dart.NodeExport:
			if n.URI != "" {
				idx.Imports = append(idx.Imports, n.URI)
			}
		case dart.NodeString:
			idx.Fragments = append(idx.Fragments, dart.Fragments(n.Sections)...)
		}
	})

	countIdents(f.Tokens, idx.Idents)
	return idx
}

// countIdents walks the full token stream, descending into string
// interpolation expressions, and counts every identifier-shaped lexeme.
// The census is deliberately kind-agnostic and includes declaration-site
// name tokens; the resolver's threshold accounts for that baseline.
func countIdents(toks []dart.Token, counts map[string]int) {
	for _, t := range toks {
		if t.Kind == dart.TokenIdent && identRe.MatchString(t.Text) {
			counts[t.Text]++
		}
		for _, p := range t.Parts {
			if p.Expr != nil {
				countIdents(p.Expr, counts)
			}
		}
	}
}
