package syntax

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestPreorderBalance(t *testing.T) {
	tree := mustParse(t, "function f(a) { if (a) { return [a, 1]; } }", JavaScript)

	depth, enters, leaves := 0, 0, 0
	walk := tree.Preorder()
	for {
		ev, ok := walk.Next()
		if !ok {
			break
		}
		if ev.Enter {
			depth++
			enters++
		} else {
			depth--
			leaves++
		}
		if depth < 0 {
			t.Fatal("leave without enter")
		}
	}
	if depth != 0 || enters != leaves {
		t.Errorf("unbalanced walk: depth %d, %d enters, %d leaves", depth, enters, leaves)
	}
	if enters != tree.NodeCount() {
		t.Errorf("walk entered %d nodes, tree has %d", enters, tree.NodeCount())
	}
}

func TestPreorderSkipSubtree(t *testing.T) {
	tree := mustParse(t, "f(() => { inner; }); outer;", JavaScript)

	var seen []string
	walk := tree.Preorder()
	for {
		ev, ok := walk.Next()
		if !ok {
			break
		}
		if !ev.Enter {
			continue
		}
		if ev.Node.Kind() == KindArrowFunction {
			walk.SkipSubtree()
			continue
		}
		if ev.Node.Kind() == KindReferenceIdentifier {
			seen = append(seen, ev.Node.Text())
		}
	}
	if want := []string{"f", "outer"}; !sameStrings(seen, want) {
		t.Errorf("references = %v, want %v", seen, want)
	}
}

func TestNodeNavigation(t *testing.T) {
	tree := mustParse(t, "const x = a.b(c);", JavaScript)

	calls := tree.Descendants(tree.Root(), KindCall)
	if len(calls) != 1 {
		t.Fatalf("got %d calls", len(calls))
	}
	call := calls[0]
	if call.Text() != "a.b(c)" {
		t.Errorf("call text = %q", call.Text())
	}
	member, ok := call.Child(KindMember)
	if !ok {
		t.Fatalf("call has no member callee:\n%s", tree)
	}
	if _, _, ok := member.ChildToken(TokenDot); !ok {
		t.Error("member has no dot token")
	}
	parent, ok := member.Parent()
	if !ok || parent.ID() != call.ID() {
		t.Error("member's parent is not the call")
	}
	if !tree.Root().IsAncestorOf(member) || member.IsAncestorOf(call) {
		t.Error("IsAncestorOf is inconsistent with the tree")
	}
	if _, ok := tree.Root().Parent(); ok {
		t.Error("root has a parent")
	}

	tok, id, ok := call.FirstToken()
	if !ok || tok.Text != "a" {
		t.Errorf("first token = %q, want a", tok.Text)
	}
	if tree.Token(id).Offset != call.Span().Start.Offset {
		t.Error("first token does not start the call span")
	}
	first, end := call.TokenRange()
	if end-first != 6 {
		t.Errorf("call covers %d tokens, want 6", end-first)
	}
}

func TestSpansExcludeTrivia(t *testing.T) {
	src := "  /* lead */ foo( 1 ) // trail\n"
	tree := mustParse(t, src, JavaScript)
	stmt := tree.Root().ChildNodes()[0]
	if stmt.Text() != "foo( 1 )" {
		t.Errorf("statement text = %q, want %q", stmt.Text(), "foo( 1 )")
	}
	span := stmt.Span()
	if span.Start.Line != 1 || span.Start.Column != 14 {
		t.Errorf("statement starts at %v, want 1:14", span.Start)
	}
	if tree.EOF().Kind != TokenEOF {
		t.Error("last token is not EOF")
	}
}

func TestMissingElements(t *testing.T) {
	tree, diags := Parse([]byte("if (a)"))
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v", messages(diags))
	}
	if got := messages(diags)[0]; got != "expected a statement but instead found the end of the file" {
		t.Errorf("message = %q", got)
	}
	ifs := tree.Descendants(tree.Root(), KindIf)
	if len(ifs) != 1 {
		t.Fatalf("got %d if statements:\n%s", len(ifs), tree)
	}
	var missing []string
	for _, el := range ifs[0].Children() {
		if el.IsMissing() {
			missing = append(missing, el.Expected())
			if _, ok := el.Node(); ok {
				t.Error("missing element returned a node")
			}
			if _, ok := el.Token(); ok {
				t.Error("missing element returned a token")
			}
		}
	}
	if want := []string{"a statement"}; !sameStrings(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}
}

func TestEmptyNodeSpan(t *testing.T) {
	tree := mustParse(t, "f();", JavaScript)
	args := tree.Descendants(tree.Root(), KindArguments)[0]
	if args.Text() != "()" {
		t.Errorf("arguments text = %q", args.Text())
	}

	empty, _ := Parse([]byte(""), WithMode(JSON))
	root := empty.Root()
	if !root.Span().IsEmpty() || root.Span().Start.Offset != 0 {
		t.Errorf("empty root span = %v", root.Span())
	}
}

func TestTreeString(t *testing.T) {
	tree := mustParse(t, `{"a": 1}`, JSON)
	dump := tree.String()
	for _, want := range []string{"JsonRoot", "JsonObject", "JsonMember", `"\"a\""`} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump does not contain %s:\n%s", want, dump)
		}
	}
}

func TestTokensReturnsCopy(t *testing.T) {
	tree := mustParse(t, "a;", JavaScript)
	tokens := tree.Tokens()
	tokens[0].Text = "changed"
	if tree.Token(0).Text != "a" {
		t.Error("Tokens exposed the tree's token slice")
	}
}

func TestTreeTokensMatchLexer(t *testing.T) {
	tests := []struct {
		src  string
		mode Mode
	}{
		{`{"a": [1, 2.5e3, true, null]} // tail`, JSON},
		{"/* lead */ const a = /re/g.test(b) ? `x${c}y` : d; // tail\n", JavaScript},
		{"let x: Array<Map<string, number>> = f<T>(y) >>> 2;\n", TypeScript},
		{"function (a { return a + ; } `${", JavaScript},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree, _ := Parse([]byte(tt.src), WithMode(tt.mode))
			want := Tokenize([]byte(tt.src), tt.mode)
			if !reflect.DeepEqual(tree.Tokens(), want) {
				t.Errorf("tree tokens differ from Tokenize:\n got %v\nwant %v", tree.Tokens(), want)
			}
		})
	}
}

func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures")
	}
	for _, path := range paths {
		mode, ok := ModeForPath(path)
		if !ok {
			continue
		}
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			tree, diags := Parse(src, WithMode(mode))
			if tree.Text() != string(src) {
				t.Fatal("fixture does not round trip")
			}
			checkTokenCoverage(t, tree)
			broken := strings.HasPrefix(filepath.Base(path), "broken")
			if broken && len(diags) == 0 {
				t.Error("broken fixture parsed without diagnostics")
			}
			if !broken && len(diags) > 0 {
				t.Errorf("diagnostics: %v", messages(diags))
			}
		})
	}
}

func TestModeNames(t *testing.T) {
	tests := []struct {
		path string
		name string
		want Mode
	}{
		{"a.json", "json", JSON},
		{"b.CJS", "js", JavaScript},
		{"c.mts", "typescript", TypeScript},
	}
	for _, tt := range tests {
		if got, ok := ModeForPath(tt.path); !ok || got != tt.want {
			t.Errorf("ModeForPath(%q) = %v, %v", tt.path, got, ok)
		}
		if got, ok := ParseMode(tt.name); !ok || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.name, got, ok)
		}
		if got, _ := ParseMode(tt.want.String()); got != tt.want {
			t.Errorf("ParseMode(%q) = %v", tt.want.String(), got)
		}
	}
	if _, ok := ModeForPath("d.jsx"); ok {
		t.Error("jsx is not supported")
	}
	if _, ok := ParseMode("coffee"); ok {
		t.Error("unknown mode accepted")
	}
}
