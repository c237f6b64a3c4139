package transform

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformBlockBodies(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "while",
			src:  "while (true) {}",
			want: "while (true) { __loopGuard(0, __loopState, 1000);}",
		},
		{
			name: "for",
			src:  "for (let i = 0; i < 3; i++) { print(i) }",
			want: "for (let i = 0; i < 3; i++) { __loopGuard(0, __loopState, 1000); print(i) }",
		},
		{
			name: "for-of",
			src:  "for (const x of [1, 2]) { print(x) }",
			want: "for (const x of [1, 2]) { __loopGuard(0, __loopState, 1000); print(x) }",
		},
		{
			name: "for-in",
			src:  "for (const k in o) { print(k) }",
			want: "for (const k in o) { __loopGuard(0, __loopState, 1000); print(k) }",
		},
		{
			name: "do-while",
			src:  "do { n++ } while (n < 3)",
			want: "do { __loopGuard(0, __loopState, 1000); n++ } while (n < 3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Transform(tt.src, DefaultOptions())

			require.Equal(t, Parsed, res.Outcome)
			assert.NoError(t, res.Err)
			assert.Equal(t, tt.want, res.Source)
			assert.Equal(t, 1, res.Loops)
		})
	}
}

func TestTransformSingleStatementBodies(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "terminated statement",
			src:  "while (x) i++;",
			want: "while (x) { __loopGuard(0, __loopState, 1000); i++; }",
		},
		{
			name: "terminator after comment",
			src:  "while (x) i++ /* c */ ;",
			want: "while (x) { __loopGuard(0, __loopState, 1000); i++ /* c */ ; }",
		},
		{
			name: "no terminator",
			src:  "while (x) i++\nprint(1)",
			want: "while (x) { __loopGuard(0, __loopState, 1000); i++ }\nprint(1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Transform(tt.src, DefaultOptions())

			require.Equal(t, Parsed, res.Outcome)
			assert.Equal(t, tt.want, res.Source)
		})
	}
}

func TestTransformNestedLoops(t *testing.T) {
	src := "for (let i = 0; i < 2; i++) { for (let j = 0; j < 2; j++) { print(i, j) } }"

	res := Transform(src, DefaultOptions())

	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, 2, res.Loops)
	assert.Equal(t,
		"for (let i = 0; i < 2; i++) { __loopGuard(0, __loopState, 1000); "+
			"for (let j = 0; j < 2; j++) { __loopGuard(1, __loopState, 1000); print(i, j) } }",
		res.Source,
	)
}

func TestTransformNestedSingleStatementLoops(t *testing.T) {
	res := Transform("for (;;) for (;;) x++;", DefaultOptions())

	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, 2, res.Loops)
	assert.Contains(t, res.Source, "__loopGuard(0, __loopState, 1000)")
	assert.Contains(t, res.Source, "__loopGuard(1, __loopState, 1000)")
	assert.Equal(t, 2, strings.Count(res.Source, "{"))
	assert.Equal(t, 2, strings.Count(res.Source, "}"))
}

func TestTransformIfElseInsideLoop(t *testing.T) {
	src := "if (a) while (x) x--; else print(1)"

	res := Transform(src, DefaultOptions())

	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, "if (a) while (x) { __loopGuard(0, __loopState, 1000); x--; } else print(1)", res.Source)
}

func TestTransformFindsLoopsEverywhere(t *testing.T) {
	src := `
function f() { while (a) {} }
const g = function () { for (;;) {} };
const h = () => { do {} while (b) };
class C {
	m() { for (const x of xs) {} }
	static s() { while (c) {} }
}
const o = { k() { for (const k in o) {} } };
function d(p = (() => { while (e) {} })()) {}
`
	res := Transform(src, DefaultOptions())

	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, 7, res.Loops)
	for site := 0; site < 7; site++ {
		assert.Equal(t, 1, strings.Count(res.Source, "__loopGuard("+strconv.Itoa(site)+","), "site %d", site)
	}
}

func TestTransformSharedDeclarationNodesGuardedOnce(t *testing.T) {
	src := "var f = function () { while (x) {} }, g = 1;"

	res := Transform(src, DefaultOptions())

	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, 1, res.Loops)
	assert.Equal(t, 1, strings.Count(res.Source, "__loopGuard("))
}

func TestTransformWithoutLoops(t *testing.T) {
	src := "print('hello')\nconst x = 1 + 2\n"

	res := Transform(src, DefaultOptions())

	assert.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, src, res.Source)
	assert.Zero(t, res.Loops)
}

func TestTransformUnparseableIsPassThrough(t *testing.T) {
	inputs := []string{
		"while (",
		"for i in range(3): print(i)",
		"}{",
	}

	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			res := Transform(src, DefaultOptions())

			assert.Equal(t, Unparseable, res.Outcome)
			assert.Equal(t, src, res.Source)
			assert.Error(t, res.Err)
			assert.Zero(t, res.Loops)
		})
	}
}

func TestTransformKeepsLineNumbers(t *testing.T) {
	src := "let n = 0\nwhile (n < 3) {\n  n++\n}\nprint(n)\n"

	res := Transform(src, DefaultOptions())

	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, strings.Count(src, "\n"), strings.Count(res.Source, "\n"))
}

func TestTransformOptions(t *testing.T) {
	res := Transform("while (x) {}", Options{MaxIterations: 5, GuardName: "__g", StateName: "__s"})

	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, "while (x) { __g(0, __s, 5);}", res.Source)
}

func TestTransformOutputReparses(t *testing.T) {
	src := `
outer: for (let i = 0; i < 3; i++)
	for (let j = 0; j < 3; j++)
		if (j == 1) continue outer; else print(i, j)
do n++; while (n < 10)
for (const c of "abc") // trailing comment
	print(c)
`
	res := Transform(src, DefaultOptions())

	require.Equal(t, Parsed, res.Outcome)
	assert.Equal(t, 4, res.Loops)

	_, err := parse(res.Source)
	assert.NoError(t, err)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "parsed", Parsed.String())
	assert.Equal(t, "unparseable", Unparseable.String())
	assert.Equal(t, "outcome(7)", Outcome(7).String())
}

func TestStatementEnd(t *testing.T) {
	tests := []struct {
		name string
		src  string
		end  int
		want int
	}{
		{name: "semicolon", src: "x;", end: 1, want: 2},
		{name: "spaced semicolon", src: "x  \n ;", end: 1, want: 6},
		{name: "line comment", src: "x // c\n;", end: 1, want: 8},
		{name: "unterminated line comment", src: "x // c", end: 1, want: 1},
		{name: "unterminated block comment", src: "x /* c", end: 1, want: 1},
		{name: "other token", src: "x\ny;", end: 1, want: 1},
		{name: "end of input", src: "x", end: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statementEnd(tt.src, tt.end))
		})
	}
}
