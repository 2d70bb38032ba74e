package syntax

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/dhamidi/scry/diagnostic"
)

func messages(diags []diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Primary.Message
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustParse(t *testing.T, src string, mode Mode) *Tree {
	t.Helper()
	tree, diags := Parse([]byte(src), WithMode(mode))
	if len(diags) > 0 {
		t.Fatalf("Parse(%q) reported %v\n%s", src, messages(diags), tree)
	}
	if tree.Text() != src {
		t.Fatalf("Parse(%q) does not round trip: %q", src, tree.Text())
	}
	return tree
}

func TestParseJSONRecoversFromUnterminatedArray(t *testing.T) {
	src := "[\"a\",\n4\n,1,"
	tree, diags := Parse([]byte(src), WithMode(JSON))

	if tree.Text() != src {
		t.Fatalf("Text() = %q, want %q", tree.Text(), src)
	}
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics %v, want 1", len(diags), messages(diags))
	}
	d := diags[0]
	want := "expected an array, an object, or a literal but instead found the end of the file"
	if d.Primary.Message != want {
		t.Errorf("message = %q, want %q", d.Primary.Message, want)
	}
	if d.Rule != diagnostic.RuleParse || d.Severity != diagnostic.Error {
		t.Errorf("rule/severity = %s/%v, want parse/error", d.Rule, d.Severity)
	}
	if span := d.Primary.Span; span.Start.Offset != len(src) || span.Start.Line != 3 || span.Start.Column != 4 {
		t.Errorf("span = %v, want the end of the file at 3:4", span)
	}

	root := tree.Root()
	if root.Kind() != KindJsonRoot {
		t.Fatalf("root kind = %v", root.Kind())
	}
	array, ok := root.Child(KindJsonArray)
	if !ok {
		t.Fatalf("no array under root:\n%s", tree)
	}
	children := array.Children()
	if len(children) != 3 {
		t.Fatalf("array has %d children, want 3:\n%s", len(children), tree)
	}
	if tok, ok := children[0].Token(); !ok || tok.Kind != TokenLBracket {
		t.Errorf("first child = %v, want `[`", children[0].Kind())
	}
	elements, ok := children[1].Node()
	if !ok || elements.Kind() != KindJsonArrayElements {
		t.Fatalf("second child is not the element list:\n%s", tree)
	}
	if !children[2].IsMissing() || children[2].Expected() != "`]`" {
		t.Errorf("third child = %v %q, want a missing `]`", children[2].Kind(), children[2].Expected())
	}

	var got []string
	for _, el := range elements.Children() {
		switch el.Kind() {
		case ElementNode:
			n, _ := el.Node()
			got = append(got, n.Kind().String()+":"+n.Text())
		case ElementToken:
			tok, _ := el.Token()
			got = append(got, tok.Text)
		default:
			got = append(got, "missing")
		}
	}
	wantElements := []string{
		KindJsonString.String() + `:"a"`, ",",
		KindJsonNumber.String() + ":4", ",",
		KindJsonNumber.String() + ":1", ",",
	}
	if !sameStrings(got, wantElements) {
		t.Errorf("elements = %v, want %v", got, wantElements)
	}
}

func TestParseJSONValid(t *testing.T) {
	tree := mustParse(t, `{"a": [1, -2.5, {"b": null}], "c": true, "d": "x"}`, JSON)
	object, ok := tree.Root().Child(KindJsonObject)
	if !ok {
		t.Fatalf("root has no object:\n%s", tree)
	}
	members, ok := object.Child(KindJsonMemberList)
	if !ok {
		t.Fatalf("object has no member list:\n%s", tree)
	}
	var names []string
	for _, m := range members.ChildNodes() {
		name, ok := m.Child(KindJsonMemberName)
		if !ok {
			t.Fatalf("member %q has no name", m.Text())
		}
		names = append(names, name.Text())
	}
	if want := []string{`"a"`, `"c"`, `"d"`}; !sameStrings(names, want) {
		t.Errorf("member names = %v, want %v", names, want)
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{"expected an array, an object, or a literal but instead found the end of the file"}},
		{"trailing comma", "[1,]", []string{"expected an array, an object, or a literal but instead found `]`"}},
		{"missing colon", `{"a" 1}`, []string{"expected `:` but instead found `1`"}},
		{"missing comma", "[1 2]", []string{"expected `,` but instead found `2`"}},
		{"missing value", `{"a": }`, []string{"expected an array, an object, or a literal but instead found `}`"}},
		{"extra value", "1 2", []string{"expected the end of the file but instead found `2`"}},
		{"single quotes", `{'a': 1}`, []string{"JSON standard does not allow single quoted strings"}},
		{"mismatched bracket", "[1, }", []string{"expected an array, an object, or a literal but instead found `}`"}},
		{"unclosed object", `{"a": 1`, []string{"expected `}` but instead found the end of the file"}},
		{"bare word", "nope", []string{"expected an array, an object, or a literal but instead found `nope`"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, diags := Parse([]byte(tt.input), WithMode(JSON))
			if got := messages(diags); !sameStrings(got, tt.want) {
				t.Errorf("diagnostics = %q, want %q\n%s", got, tt.want, tree)
			}
			if tree.Text() != tt.input {
				t.Errorf("Text() = %q, want %q", tree.Text(), tt.input)
			}
		})
	}
}

func TestParseJavaScriptValid(t *testing.T) {
	tests := []string{
		"var a = 1, b;",
		"let [x, , ...rest] = arr;",
		"const { a, b: { c }, d = 1, ...e } = obj;",
		"function f(a, b = 2, ...c) { return a + b; }",
		"async function g() { await h(); }",
		"function* gen() { yield 1; yield* other(); }",
		"const f = (a, { b }) => a + b;",
		"const g = async x => x;",
		"async () => {};",
		"class A extends B { static x = 1; #y; constructor() { super(); } get z() { return this.#y; } static { init(); } }",
		"for (let i = 0; i < n; i++) {}",
		"for (const k in obj) {}",
		"for (const v of list) {}",
		"for (x of y);",
		"for (;;) { break; }",
		"while (x) x--;",
		"do { x++; } while (x < 10);",
		"try { a(); } catch (e) { b(e); } finally { c(); }",
		"try { a(); } catch { b(); }",
		"switch (x) { case 1: y(); break; default: z(); }",
		"outer: for (;;) { break outer; }",
		"import React, { useEffect as ue } from 'react';",
		"import * as ns from './ns';",
		"import './side-effect';",
		"export const a = 1;",
		"export default function () {}",
		"export { a as b, c };",
		"export * from './all';",
		"export { x } from './x';",
		"const o = { a, b: 1, [k]: 2, m() {}, get g() { return 1; }, ...rest };",
		"a?.b?.[c]?.(d);",
		"new Foo(1).bar;",
		"const t = tag`hello ${name}`;",
		"const s = `a${b}c${`d${e}`}f`;",
		"x = `${ { a: 1 }.a }`;",
		"f(`${a}`, `plain`);",
		"const r = /ab+c/gi.test(s);",
		"x = y ? z : w;",
		"a ||= b; c ??= d;",
		"if (a) b(); else if (c) d(); else e();",
		"throw new Error('x');",
		"const fn = function named() {};",
		"const C = class {};",
		"delete obj[key], void 0, typeof x;",
		"[a, b] = [b, a];",
		"label: { break label; }",
		"let x = a\nlet y = b",
		"const big = 10n ** 2n;",
		"(function () {})();",
		"debugger;",
		"x = a in b;",
		"const v = import('./lazy');",
		"// only a comment\n",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			tree := mustParse(t, src, JavaScript)
			if tree.Root().Kind() != KindModule {
				t.Errorf("root kind = %v, want Module", tree.Root().Kind())
			}
		})
	}
}

func TestParseTypeScriptValid(t *testing.T) {
	tests := []string{
		"let x: number = 1;",
		"function f<T>(a: T, b?: string): T[] { return [a]; }",
		"type P = { a: string } | null;",
		"interface I extends J { m(): void; }",
		"const v = x as unknown as string;",
		"const n = maybe!.value;",
		"const r = f<string>(x);",
		"class K<T> implements I { private readonly x: T; constructor(public y: number) {} m?(): void {} }",
		"const a = (x: number): number => x * 2;",
		"let u: Array<Map<string, number>> = [];",
		"let fn: (a: string) => void;",
		"import type { T } from './t';",
		"export type { T };",
		"function isS(x: unknown): x is string { return true; }",
		"abstract class Z { abstract m(): void; }",
		"const ok = a < b && c > d;",
		"const t = tag<string>`x${y}`;",
		"type Route = `/${string}/edit`;",
		"let m: { [k: string]: `${number}` };",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			mustParse(t, src, TypeScript)
		})
	}
}

func TestParseJavaScriptErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"missing binding", "const = 1;", []string{"expected an identifier, an array pattern, or an object pattern but instead found `=`"}},
		{"unclosed call", "foo(1, 2", []string{"expected `)` but instead found the end of the file"}},
		{"unclosed condition", "if (a { b }", []string{"expected `)` but instead found `{`"}},
		{"missing semicolon", "a b", []string{"expected `;` but instead found `b`"}},
		{"stray brace", "}", []string{"unexpected `}`"}},
		{"missing initializer", "const x = ;", []string{"expected an expression but instead found `;`"}},
		{"anonymous class declaration", "class { }", []string{"expected an identifier but instead found `{`"}},
		{"try without handler", "try {} x();", []string{"expected `catch` or `finally` but instead found `x`"}},
		{"unclosed block", "function f() {", []string{"expected `}` but instead found the end of the file"}},
		{"unclosed substitution", "`${a", []string{"expected `}` but instead found the end of the file"}},
		{"junk in substitution", "`${a b}`;", []string{"expected `}` but instead found `b`"}},
		{"empty substitution", "`${}`;", []string{"expected an expression but instead found `}`"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, diags := Parse([]byte(tt.input))
			if got := messages(diags); !sameStrings(got, tt.want) {
				t.Errorf("diagnostics = %q, want %q\n%s", got, tt.want, tree)
			}
			if tree.Text() != tt.input {
				t.Errorf("Text() = %q, want %q", tree.Text(), tt.input)
			}
		})
	}
}

func TestParseAssignmentTargets(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		assignments []string
		references  []string
	}{
		{"plain", "a = b;", []string{"a"}, []string{"b"}},
		{"compound", "a += b;", []string{"a"}, []string{"b"}},
		{"update", "i++; --j;", []string{"i", "j"}, nil},
		{"destructuring", "[a, { b, c: d }] = e;", []string{"a", "b", "d"}, []string{"e"}},
		{"default value is read", "({ a = b } = c);", []string{"a"}, []string{"b", "c"}},
		{"member target", "a.b = c;", nil, []string{"a", "c"}},
		{"for of head", "for (x of xs);", []string{"x"}, []string{"xs"}},
		{"template substitutions", "x = `${a}-${b.c}`;", []string{"x"}, []string{"a", "b"}},
		{"nested template", "`${`${a}`}`;", nil, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustParse(t, tt.src, JavaScript)
			var assigned, referenced []string
			for _, n := range tree.Descendants(tree.Root(), KindIdentifierAssignment, KindReferenceIdentifier) {
				if n.Kind() == KindIdentifierAssignment {
					assigned = append(assigned, n.Text())
				} else {
					referenced = append(referenced, n.Text())
				}
			}
			if !sameStrings(assigned, tt.assignments) {
				t.Errorf("assignments = %v, want %v", assigned, tt.assignments)
			}
			if !sameStrings(referenced, tt.references) {
				t.Errorf("references = %v, want %v", referenced, tt.references)
			}
		})
	}
}

func TestParseNodeKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		mode Mode
		kind NodeKind
		text string
	}{
		{"arrow", "const f = x => x;", JavaScript, KindArrowFunction, "x => x"},
		{"shorthand", "({ a });", JavaScript, KindShorthandProperty, "a"},
		{"field", "class A { x = 1; }", JavaScript, KindFieldDef, "x = 1;"},
		{"method", "class A { m() {} }", JavaScript, KindMethodDef, "m() {}"},
		{"for in", "for (k in o) {}", JavaScript, KindForIn, "for (k in o) {}"},
		{"optional call", "a?.(b);", JavaScript, KindCall, "a?.(b)"},
		{"logical", "a && b;", JavaScript, KindLogical, "a && b"},
		{"sequence", "a, b;", JavaScript, KindSequence, "a, b"},
		{"re-export name", "export { x } from './x';", JavaScript, KindMemberName, "x"},
		{"type alias name", "type T = string;", TypeScript, KindTypeName, "T"},
		{"as expression", "x as Y;", TypeScript, KindAs, "x as Y"},
		{"type annotation", "let a: string;", TypeScript, KindTypeAnnotation, ": string"},
		{"type arguments", "f<T>(x);", TypeScript, KindTypeArguments, "<T>"},
		{"nested type arguments", "f<A<B<C>>>(x);", TypeScript, KindTypeArguments, "<A<B<C>>>"},
		{"template", "x = `a${`b${c}`}d`;", JavaScript, KindTemplate, "`a${`b${c}`}d`"},
		{"tagged template", "html`<p>${x}</p>`;", JavaScript, KindTaggedTemplate, "html`<p>${x}</p>`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustParse(t, tt.src, tt.mode)
			nodes := tree.Descendants(tree.Root(), tt.kind)
			if len(nodes) == 0 {
				t.Fatalf("no %v node in:\n%s", tt.kind, tree)
			}
			if got := nodes[0].Text(); got != tt.text {
				t.Errorf("%v text = %q, want %q", tt.kind, got, tt.text)
			}
		})
	}
}

func TestParseArrowParameters(t *testing.T) {
	tree := mustParse(t, "const f = ({ a }, [b], c = 1, ...d) => a;", JavaScript)
	arrow := tree.Descendants(tree.Root(), KindArrowFunction)[0]
	params, ok := arrow.Child(KindParameters)
	if !ok {
		t.Fatalf("arrow has no parameters:\n%s", tree)
	}
	var bindings []string
	for _, b := range tree.Descendants(params, KindIdentifierBinding) {
		bindings = append(bindings, b.Text())
	}
	if want := []string{"a", "b", "c", "d"}; !sameStrings(bindings, want) {
		t.Errorf("bindings = %v, want %v", bindings, want)
	}
}

func TestParseDepthLimit(t *testing.T) {
	const depth = 1000
	msg := "the nesting depth exceeds the supported maximum"

	t.Run("json", func(t *testing.T) {
		src := strings.Repeat("[", depth) + strings.Repeat("]", depth)
		tree, diags := Parse([]byte(src), WithMode(JSON))
		if got := messages(diags); !sameStrings(got, []string{msg}) {
			t.Errorf("diagnostics = %q, want only the depth error", got)
		}
		if tree.Text() != src {
			t.Error("deep JSON does not round trip")
		}
	})

	t.Run("javascript", func(t *testing.T) {
		src := "x = " + strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth) + ";"
		tree, diags := Parse([]byte(src))
		if got := messages(diags); !sameStrings(got, []string{msg}) {
			t.Errorf("diagnostics = %q, want only the depth error", got)
		}
		if tree.Text() != src {
			t.Error("deep JavaScript does not round trip")
		}
	})

	t.Run("custom limit", func(t *testing.T) {
		src := "[[[[1]]]]"
		_, diags := Parse([]byte(src), WithMode(JSON), WithMaxDepth(3))
		if got := messages(diags); !sameStrings(got, []string{msg}) {
			t.Errorf("diagnostics = %q, want only the depth error", got)
		}
		_, diags = Parse([]byte(src), WithMode(JSON), WithMaxDepth(5))
		if len(diags) != 0 {
			t.Errorf("depth 5 reported %q", messages(diags))
		}
	})
}

func TestParseComparisonChainIsLinear(t *testing.T) {
	src := "x = " + strings.Repeat("a < ", 20000) + "b;"
	for _, mode := range []Mode{JavaScript, TypeScript} {
		start := time.Now()
		tree, diags := Parse([]byte(src), WithMode(mode))
		elapsed := time.Since(start)
		if tree.Text() != src {
			t.Fatalf("%s: comparison chain does not round trip", mode)
		}
		if len(diags) != 0 {
			t.Errorf("%s: diagnostics = %q", mode, messages(diags)[:1])
		}
		if elapsed > 2*time.Second {
			t.Errorf("%s: parsing 20000 comparisons took %s", mode, elapsed)
		}
	}
}

func TestParseTypeArgumentsNeedACall(t *testing.T) {
	tests := []struct {
		src  string
		args int
	}{
		{"f<T>(x);", 1},
		{"f<T>`t`;", 1},
		{"a < b > c;", 0},
		{"a < b; c > (d);", 0},
		{"a < (b) && c > (d);", 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree, _ := Parse([]byte(tt.src), WithMode(TypeScript))
			if got := len(tree.Descendants(tree.Root(), KindTypeArguments)); got != tt.args {
				t.Errorf("type argument nodes = %d, want %d\n%s", got, tt.args, tree)
			}
		})
	}
}

var garbageAlphabet = []string{
	"(", ")", "[", "]", "{", "}", ",", ";", ":", "?", "?.", ".", "...",
	"=", "=>", "+", "++", "-", "!", "<", ">", ">>", "/", "*", "**", "&&",
	"a", "b", "let", "const", "function", "class", "async", "await", "yield",
	"if", "else", "for", "of", "in", "return", "new", "import", "export",
	"type", "interface", "as", "static", "get", "#p", "1", "'s'", "\"s\"",
	"`t${x}`", "`${", "}`", "`", "/r/", "true", "null", " ", "\n", "// c\n", "/* c */", "\\", "@",
}

func TestParseTotality(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, mode := range []Mode{JSON, JavaScript, TypeScript} {
		for i := 0; i < 300; i++ {
			var sb strings.Builder
			n := rng.Intn(40)
			for j := 0; j < n; j++ {
				sb.WriteString(garbageAlphabet[rng.Intn(len(garbageAlphabet))])
			}
			src := sb.String()
			tree, diags := Parse([]byte(src), WithMode(mode))
			if tree.Text() != src {
				t.Fatalf("%s: %q does not round trip: %q", mode, src, tree.Text())
			}
			for _, d := range diags {
				if strings.HasPrefix(d.Primary.Message, "internal parser error") {
					t.Fatalf("%s: %q: %s", mode, src, d.Primary.Message)
				}
			}
			checkTokenCoverage(t, tree)
		}
	}
}

// checkTokenCoverage verifies that every token except EOF is a child of
// exactly one node.
func checkTokenCoverage(t *testing.T, tree *Tree) {
	t.Helper()
	seen := make([]int, tree.TokenCount())
	walk := tree.Preorder()
	for {
		ev, ok := walk.Next()
		if !ok {
			break
		}
		if !ev.Enter {
			continue
		}
		for _, el := range ev.Node.Children() {
			if id, ok := el.TokenID(); ok {
				seen[id]++
			}
		}
	}
	for id, n := range seen[:len(seen)-1] {
		if n != 1 {
			t.Fatalf("token %d (%q) is owned by %d nodes in %q", id, tree.Token(TokenID(id)).Text, n, tree.Source())
		}
	}
}

func TestParseDiagnosticsAreSorted(t *testing.T) {
	_, diags := Parse([]byte("const = ;\nfoo(\nclass {"))
	for i := 1; i < len(diags); i++ {
		if diags[i].Primary.Span.Start.Offset < diags[i-1].Primary.Span.Start.Offset {
			t.Fatalf("diagnostics out of order: %v", messages(diags))
		}
	}
	if len(diags) == 0 {
		t.Fatal("expected diagnostics")
	}
}
