package dart

import "testing"

func declsOf(src string, kind NodeKind) []Node {
	f := Parse("test.dart", src)
	var out []Node
	f.Walk(func(n *Node) {
		if n.Kind == kind {
			out = append(out, *n)
		}
	})
	return out
}

func declNames(src string, kind NodeKind) []string {
	var names []string
	for _, n := range declsOf(src, kind) {
		names = append(names, n.Name)
	}
	return names
}

func assertNames(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseClassDecl(t *testing.T) {
	src := `class Foo extends Bar with Baz implements Qux {}`
	assertNames(t, declNames(src, NodeClass), []string{"Foo"})
}

func TestParseClassModifiers(t *testing.T) {
	src := `
abstract class A {}
final class B {}
sealed class C {}
base mixin class D {}
final x = 1;
`
	assertNames(t, declNames(src, NodeClass), []string{"A", "B", "C", "D"})
}

func TestParseTopLevelFunctions(t *testing.T) {
	src := `
void main() {
  helper();
}
int helper() => compute(1);
Future<void> run() async {}
`
	assertNames(t, declNames(src, NodeMethod), []string{"main", "helper", "run"})
}

func TestParseClassMembers(t *testing.T) {
	src := `
class Counter {
  int value = 0;
  final String label = 'count';

  Counter();
  Counter.named(this.value);
  factory Counter.zero() => Counter();

  void increment() { value++; }
  int doubled() => value * 2;
  int get squared => value * value;
  set magnitude(int v) { value = v; }
  bool operator ==(Object other) => false;
}
`
	got := declNames(src, NodeMethod)
	want := []string{"increment", "doubled", "squared", "magnitude", "=="}
	assertNames(t, got, want)
}

func TestParseConstructorsNotRecorded(t *testing.T) {
	src := `
class Point {
  Point(this.x, this.y);
  Point.origin() : x = 0, y = 0;
  factory Point.unit() = Point.origin;
  final double x, y;
}
`
	if names := declNames(src, NodeMethod); names != nil {
		t.Errorf("constructors recorded as methods: %v", names)
	}
}

func TestParseGenericMethod(t *testing.T) {
	src := `
class Box {
  List<R> map<R>(R Function(int) fn) => [];
}
`
	assertNames(t, declNames(src, NodeMethod), []string{"map"})
}

func TestParseFunctionTypedField(t *testing.T) {
	src := `
class Handler {
  void Function(int) callback;
}
`
	if names := declNames(src, NodeMethod); names != nil {
		t.Errorf("function-typed field recorded: %v", names)
	}
}

func TestParseDirectives(t *testing.T) {
	src := `
import 'package:http/http.dart';
import 'dart:async' as async;
export 'src/widget.dart' show Widget;
part 'main.g.dart';
`
	f := Parse("test.dart", src)
	var imports, exports []string
	f.Walk(func(n *Node) {
		switch n.Kind {
		case NodeImport:
			imports = append(imports, n.URI)
		case NodeExport:
			exports = append(exports, n.URI)
		}
	})
	assertNames(t, imports, []string{"package:http/http.dart", "dart:async"})
	assertNames(t, exports, []string{"src/widget.dart"})
}

func TestParseEnum(t *testing.T) {
	src := `
enum Status {
  active('a'),
  inactive('i');

  const Status(this.code);
  final String code;

  String describe() => code;
}
`
	// constants and the constructor are not declarations; the method is
	assertNames(t, declNames(src, NodeMethod), []string{"describe"})
	if names := declNames(src, NodeClass); names != nil {
		t.Errorf("enum recorded as class: %v", names)
	}
}

func TestParseMixinAndExtension(t *testing.T) {
	src := `
mixin Loggable {
  void log() {}
}
extension StringX on String {
  String shout() => toUpperCase();
}
`
	assertNames(t, declNames(src, NodeMethod), []string{"log", "shout"})
}

func TestParseMetadata(t *testing.T) {
	src := `
@Deprecated('use New instead')
class Old {}

@override
void build() {}
`
	assertNames(t, declNames(src, NodeClass), []string{"Old"})
	assertNames(t, declNames(src, NodeMethod), []string{"build"})
}

func TestParseStringNodes(t *testing.T) {
	src := `
void main() {
  final a = 'first' 'second';
  final b = 'single';
}
`
	nodes := declsOf(src, NodeString)
	if len(nodes) != 2 {
		t.Fatalf("string nodes = %d, want 2", len(nodes))
	}
	if len(nodes[0].Sections) != 2 {
		t.Errorf("adjacent run sections = %d, want 2", len(nodes[0].Sections))
	}
	if len(nodes[1].Sections) != 1 {
		t.Errorf("single literal sections = %d, want 1", len(nodes[1].Sections))
	}
}

func TestParseNestedInterpolationString(t *testing.T) {
	src := `final msg = 'outer ${wrap('inner')}';`
	nodes := declsOf(src, NodeString)
	if len(nodes) != 2 {
		t.Fatalf("string nodes = %d, want 2 (outer plus nested)", len(nodes))
	}
}

func TestParseMalformedInput(t *testing.T) {
	src := `class { void broken( } import`
	f := Parse("test.dart", src)
	if f == nil {
		t.Fatal("Parse returned nil on malformed input")
	}
}

func TestParseClassNameUsedAsValueElsewhere(t *testing.T) {
	// A method sharing the name of another class is still a declaration.
	src := `
class Parser {}
class Runner {
  void parse() {}
}
`
	assertNames(t, declNames(src, NodeClass), []string{"Parser", "Runner"})
	assertNames(t, declNames(src, NodeMethod), []string{"parse"})
}
