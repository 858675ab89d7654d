package dart

// NodeKind tags the syntax constructs the analysis consumes. Traversal is
// a flat callback walk over tagged kinds rather than a visitor hierarchy.
type NodeKind uint8

const (
	NodeImport NodeKind = iota
	NodeExport
	NodeClass
	NodeMethod
	NodeString
)

// Node is one extracted construct. Name is set for class and method
// declarations, URI for directives, Sections for string literals (one
// section per adjacent literal in a run).
type Node struct {
	Kind     NodeKind
	Name     string
	URI      string
	Line     int
	Sections [][]StringPart
}

// Diagnostic is an advisory parse problem. Downstream analysis never
// inspects these; a file with diagnostics still contributes its tree.
type Diagnostic struct {
	Line    int
	Message string
}

// File is the parse result for one source file.
type File struct {
	Path   string
	Tokens []Token
	Nodes  []Node
	Diags  []Diagnostic
}

// Walk invokes fn for every node.
func (f *File) Walk(fn func(*Node)) {
	for i := range f.Nodes {
		fn(&f.Nodes[i])
	}
}

// Parse builds a tolerant structural summary of Dart source: directives,
// class and method/function declarations, string literals, and the raw
// token stream. Malformed input degrades to a partial node list; Parse
// never fails.
func Parse(path, src string) *File {
	toks, diags := Lex(src)
	p := &parser{toks: toks}
	p.unit()
	collectStrings(toks, &p.nodes)
	return &File{Path: path, Tokens: toks, Nodes: p.nodes, Diags: append(diags, p.diags...)}
}

type parser struct {
	toks  []Token
	pos   int
	nodes []Node
	diags []Diagnostic
}

var eof = Token{Kind: TokenEOF}

func (p *parser) at(i int) Token {
	if i < 0 || i >= len(p.toks) {
		return eof
	}
	return p.toks[i]
}

func (p *parser) cur() Token { return p.at(p.pos) }

func (p *parser) record(kind NodeKind, name string, line int) {
	p.nodes = append(p.nodes, Node{Kind: kind, Name: name, Line: line})
}

func (p *parser) unit() {
	for p.pos < len(p.toks) {
		t := p.cur()
		switch {
		case t.Kind == TokenPunct && (t.Text == ";" || t.Text == "}"):
			p.pos++
		case t.Kind == TokenPunct && t.Text == "@":
			p.skipMetadata()
		case t.Kind == TokenIdent && (t.Text == "import" || t.Text == "export"):
			p.directive(t.Text)
		case t.Kind == TokenIdent && (t.Text == "part" || t.Text == "library" || t.Text == "typedef"):
			p.skipToSemi()
		case t.Kind == TokenIdent && t.Text == "class":
			p.classDecl()
		case t.Kind == TokenIdent && t.Text == "mixin" && p.at(p.pos+1).Text == "class":
			p.pos++
			p.classDecl()
		case t.Kind == TokenIdent && (t.Text == "mixin" || t.Text == "enum" || t.Text == "extension"):
			p.containerDecl(t.Text)
		case t.Kind == TokenIdent && isClassModifier(t.Text) && p.modifiesClass():
			p.pos++
		default:
			p.member("")
		}
	}
}

func isClassModifier(s string) bool {
	switch s {
	case "abstract", "base", "final", "interface", "sealed":
		return true
	}
	return false
}

// modifiesClass reports whether the current modifier-shaped identifier is
// followed by a class or mixin declaration. "final" and friends are also
// ordinary variable keywords, so a lookahead is required.
func (p *parser) modifiesClass() bool {
	for k := p.pos + 1; k <= p.pos+3; k++ {
		switch t := p.at(k); {
		case t.Kind == TokenIdent && (t.Text == "class" || t.Text == "mixin"):
			return true
		case t.Kind != TokenIdent || !isClassModifier(t.Text):
			return false
		}
	}
	return false
}

func (p *parser) directive(kind string) {
	line := p.cur().Line
	p.pos++
	node := Node{Kind: NodeImport, Line: line}
	if kind == "export" {
		node.Kind = NodeExport
	}
	if t := p.cur(); t.Kind == TokenString {
		node.URI = literalText(t.Parts)
	} else {
		p.diag(line, "directive without target")
	}
	p.nodes = append(p.nodes, node)
	p.skipToSemi()
}

func literalText(parts []StringPart) string {
	s := ""
	for _, p := range parts {
		s += p.Text
	}
	return s
}

func (p *parser) classDecl() {
	p.pos++ // class
	t := p.cur()
	if t.Kind != TokenIdent {
		p.diag(t.Line, "class without a name")
		return
	}
	p.record(NodeClass, t.Text, t.Line)
	p.pos++
	p.skipHeader()
	switch p.cur().Text {
	case "{":
		p.pos++
		p.members(t.Text)
	case ";":
		p.pos++
	}
}

// containerDecl handles mixin, enum, and extension declarations. These do
// not produce class records, but their member methods are declarations
// like any other.
func (p *parser) containerDecl(kind string) {
	p.pos++
	name := ""
	if t := p.cur(); t.Kind == TokenIdent && t.Text != "on" {
		name = t.Text
		p.pos++
	}
	p.skipHeader()
	switch p.cur().Text {
	case ";":
		p.pos++
		return
	case "{":
		p.pos++
	default:
		return
	}
	if kind == "enum" {
		p.skipEnumConstants()
	}
	p.members(name)
}

// skipEnumConstants consumes the constant list up to the ';' that starts
// the member section, or leaves the closing brace for members to consume.
func (p *parser) skipEnumConstants() {
	depth := 0
	for p.pos < len(p.toks) {
		switch p.cur().Text {
		case "(", "[", "{", "<":
			depth++
		case ")", "]", ">":
			depth--
		case "}":
			if depth == 0 {
				return
			}
			depth--
		case ";":
			if depth == 0 {
				p.pos++
				return
			}
		}
		p.pos++
	}
}

func (p *parser) members(className string) {
	for p.pos < len(p.toks) {
		t := p.cur()
		switch {
		case t.Kind == TokenPunct && t.Text == "}":
			p.pos++
			return
		case t.Kind == TokenPunct && t.Text == ";":
			p.pos++
		case t.Kind == TokenPunct && t.Text == "@":
			p.skipMetadata()
		default:
			p.member(className)
		}
	}
}

// member scans one declaration at class-body or top level. Fields are
// recognized by hitting '=' or ';' before any parameter list; methods by
// the parameter list itself.
func (p *parser) member(className string) {
	factory := false
	for p.pos < len(p.toks) {
		t := p.cur()
		if t.Kind == TokenPunct {
			switch t.Text {
			case ";":
				p.pos++
				return
			case "}":
				return // caller consumes
			case "=":
				p.skipToSemi()
				return
			case "{":
				p.skipBraces()
				return
			case "(":
				p.funcDecl(className, factory)
				return
			case "@":
				p.skipMetadata()
				continue
			}
			p.pos++
			continue
		}
		if t.Kind == TokenIdent {
			switch t.Text {
			case "factory":
				factory = true
				p.pos++
				continue
			case "get":
				if n := p.at(p.pos + 1); n.Kind == TokenIdent {
					switch p.at(p.pos + 2).Text {
					case "{", "=>", ";":
						p.pos += 2
						p.record(NodeMethod, n.Text, n.Line)
						p.skipFuncBody()
						return
					}
				}
			case "operator":
				p.operatorDecl(className)
				return
			}
		}
		p.pos++
	}
}

// funcDecl is entered with the cursor on the opening parenthesis of a
// parameter list. The declaration name is the identifier before it,
// skipping a type-parameter group.
func (p *parser) funcDecl(className string, factory bool) {
	idx, ok := p.nameIndexBefore(p.pos)
	p.skipParens()
	if ok {
		name := p.toks[idx]
		ctor := factory || (className != "" && name.Text == className)
		if className != "" && p.at(idx-1).Text == "." && p.at(idx-2).Text == className {
			ctor = true // named constructor
		}
		// "int Function() f" is a function-typed field, not a declaration
		if !ctor && name.Text != "Function" {
			p.record(NodeMethod, name.Text, name.Line)
		}
	}
	p.skipFuncBody()
}

func (p *parser) operatorDecl(className string) {
	line := p.cur().Line
	p.pos++ // operator
	name := ""
	for p.pos < len(p.toks) && p.cur().Text != "(" && len(name) < 3 {
		name += p.cur().Text
		p.pos++
	}
	if p.cur().Text != "(" {
		p.skipToSemi()
		return
	}
	p.skipParens()
	if name != "" && className != "" {
		p.record(NodeMethod, name, line)
	}
	p.skipFuncBody()
}

// nameIndexBefore finds the declaration name token directly before the
// parameter list at paren, stepping over a <...> type-parameter group.
func (p *parser) nameIndexBefore(paren int) (int, bool) {
	k := paren - 1
	if p.at(k).Kind == TokenPunct && p.at(k).Text == ">" {
		depth := 1
		k--
		for k >= 0 && depth > 0 {
			switch p.toks[k].Text {
			case ">":
				depth++
			case "<":
				depth--
			}
			k--
		}
	}
	if p.at(k).Kind == TokenIdent {
		return k, true
	}
	return 0, false
}

// skipFuncBody consumes everything after a parameter list: async
// modifiers, initializer lists, and then a block body, an expression
// body, a redirecting '=' clause, or a terminating semicolon.
func (p *parser) skipFuncBody() {
	for p.pos < len(p.toks) {
		switch p.cur().Text {
		case "async", "sync", "*":
			p.pos++
		case "(":
			p.skipParens()
		case "{":
			p.skipBraces()
			return
		case "=>", "=":
			p.skipToSemi()
			return
		case ";":
			p.pos++
			return
		case "}":
			return
		default:
			p.pos++
		}
	}
}

func (p *parser) skipHeader() {
	for p.pos < len(p.toks) {
		switch p.cur().Text {
		case "{", ";", "}":
			return
		}
		p.pos++
	}
}

func (p *parser) skipParens() {
	depth := 0
	for p.pos < len(p.toks) {
		switch p.cur().Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				p.pos++
				return
			}
		}
		p.pos++
	}
}

func (p *parser) skipBraces() {
	depth := 0
	for p.pos < len(p.toks) {
		switch p.cur().Text {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				p.pos++
				return
			}
		}
		p.pos++
	}
}

func (p *parser) skipToSemi() {
	depth := 0
	for p.pos < len(p.toks) {
		switch p.cur().Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			if depth == 0 {
				return // unbalanced close, leave for caller
			}
			depth--
		case ";":
			if depth == 0 {
				p.pos++
				return
			}
		}
		p.pos++
	}
}

func (p *parser) skipMetadata() {
	p.pos++ // @
	for p.cur().Kind == TokenIdent {
		p.pos++
		if p.cur().Text == "." {
			p.pos++
			continue
		}
		break
	}
	if p.cur().Text == "<" {
		depth := 0
		for p.pos < len(p.toks) {
			switch p.cur().Text {
			case "<":
				depth++
			case ">":
				depth--
			}
			p.pos++
			if depth == 0 {
				break
			}
		}
	}
	if p.cur().Text == "(" {
		p.skipParens()
	}
}

func (p *parser) diag(line int, msg string) {
	p.diags = append(p.diags, Diagnostic{Line: line, Message: msg})
}

// collectStrings appends one string node per run of adjacent string
// literals, recursing into interpolation expressions for nested strings.
func collectStrings(toks []Token, nodes *[]Node) {
	i := 0
	for i < len(toks) {
		if toks[i].Kind != TokenString {
			i++
			continue
		}
		node := Node{Kind: NodeString, Line: toks[i].Line}
		j := i
		for j < len(toks) && toks[j].Kind == TokenString {
			node.Sections = append(node.Sections, toks[j].Parts)
			j++
		}
		*nodes = append(*nodes, node)
		for k := i; k < j; k++ {
			for _, part := range toks[k].Parts {
				if part.Expr != nil {
					collectStrings(part.Expr, nodes)
				}
			}
		}
		i = j
	}
}
