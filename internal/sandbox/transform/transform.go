package transform

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/guard"
)

// Outcome tags the result of a transform
type Outcome int

const (
	// Parsed means the source was parsed and every loop body carries a guard call
	Parsed Outcome = iota
	// Unparseable means the source is returned untouched
	Unparseable
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Unparseable:
		return "unparseable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Options configures guard injection
type Options struct {
	MaxIterations int    // Per-site iteration budget passed to every guard call
	GuardName     string // Global name of the guard function
	StateName     string // Global name of the counter-state handle
}

// DefaultOptions returns the guard names the executor binds
func DefaultOptions() Options {
	return Options{
		MaxIterations: guard.DefaultMaxIterations,
		GuardName:     guard.FuncName,
		StateName:     guard.StateName,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = def.MaxIterations
	}
	if o.GuardName == "" {
		o.GuardName = def.GuardName
	}
	if o.StateName == "" {
		o.StateName = def.StateName
	}
	return o
}

// Result is the tagged outcome of Transform
type Result struct {
	Outcome Outcome
	Source  string // Guarded source when Parsed, original source otherwise
	Loops   int    // Number of guarded loop sites
	Err     error  // Parse error when Unparseable
}

// Transform injects a guard call as the first statement of every loop body.
// Source that does not parse is returned unchanged.
func Transform(src string, opts Options) Result {
	opts = opts.withDefaults()

	prog, err := parse(src)
	if err != nil {
		return Result{Outcome: Unparseable, Source: src, Err: err}
	}

	base := 1
	if prog.File != nil {
		base = prog.File.Base()
	}

	loops := collectLoops(prog)
	if len(loops) == 0 {
		return Result{Outcome: Parsed, Source: src}
	}

	edits := make([]edit, 0, len(loops)*2)
	for site, loop := range loops {
		call := guardCall(opts, site)
		e, err := bodyEdits(src, base, loopBody(loop), call)
		if err != nil {
			return Result{Outcome: Unparseable, Source: src, Err: err}
		}
		edits = append(edits, e...)
	}

	guarded := apply(src, edits)

	// Splicing must never turn valid input into invalid output
	if _, err := parse(guarded); err != nil {
		return Result{Outcome: Unparseable, Source: src, Err: fmt.Errorf("guarded source does not parse: %w", err)}
	}

	return Result{Outcome: Parsed, Source: guarded, Loops: len(loops)}
}

func parse(src string) (*ast.Program, error) {
	return parser.ParseFile(nil, "", src, 0, parser.WithDisableSourceMaps)
}

func guardCall(opts Options, site int) string {
	return fmt.Sprintf("%s(%d, %s, %d);", opts.GuardName, site, opts.StateName, opts.MaxIterations)
}

// edit inserts text at a byte offset of the original source
type edit struct {
	at      int
	text    string
	closing bool
}

// bodyEdits returns the insertions that put call at the head of body
func bodyEdits(src string, base int, body ast.Statement, call string) ([]edit, error) {
	if block, ok := body.(*ast.BlockStatement); ok {
		brace := int(block.LeftBrace) - base
		if brace < 0 || brace >= len(src) || src[brace] != '{' {
			return nil, fmt.Errorf("loop body brace out of place at offset %d", brace)
		}
		return []edit{{at: brace + 1, text: " " + call}}, nil
	}

	start := int(body.Idx0()) - base
	end := int(body.Idx1()) - base
	if start < 0 || end < start || end > len(src) {
		return nil, fmt.Errorf("loop body span [%d,%d) out of range", start, end)
	}
	end = statementEnd(src, end)

	return []edit{
		{at: start, text: "{ " + call + " "},
		{at: end, text: " }", closing: true},
	}, nil
}

// statementEnd extends end past an explicit ';' terminator separated from
// the statement only by whitespace or comments.
func statementEnd(src string, end int) int {
	i := end
	for i < len(src) {
		switch {
		case isSpace(src[i]):
			i++
		case strings.HasPrefix(src[i:], "//"):
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return end
			}
			i += nl + 1
		case strings.HasPrefix(src[i:], "/*"):
			n := strings.Index(src[i+2:], "*/")
			if n < 0 {
				return end
			}
			i += n + 4
		case src[i] == ';':
			return i + 1
		default:
			return end
		}
	}
	return end
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// apply splices edits into src. At equal offsets closing braces go first.
func apply(src string, edits []edit) string {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].at != edits[j].at {
			return edits[i].at < edits[j].at
		}
		return edits[i].closing && !edits[j].closing
	})

	var sb strings.Builder
	sb.Grow(len(src) + len(edits)*32)

	last := 0
	for _, e := range edits {
		sb.WriteString(src[last:e.at])
		sb.WriteString(e.text)
		last = e.at
	}
	sb.WriteString(src[last:])

	return sb.String()
}

// loopBody returns the body of an iteration statement, or nil
func loopBody(n ast.Node) ast.Statement {
	switch s := n.(type) {
	case *ast.ForStatement:
		return s.Body
	case *ast.ForInStatement:
		return s.Body
	case *ast.ForOfStatement:
		return s.Body
	case *ast.WhileStatement:
		return s.Body
	case *ast.DoWhileStatement:
		return s.Body
	}
	return nil
}

var filePtrType = reflect.TypeOf((*file.File)(nil))

// collectLoops finds every iteration statement in the program, ordered by
// source position. goja has no AST visitor, so the tree is walked through
// its exported fields.
func collectLoops(prog *ast.Program) []ast.Node {
	c := &collector{seen: make(map[ast.Node]bool)}
	c.walk(reflect.ValueOf(prog))

	sort.SliceStable(c.loops, func(i, j int) bool {
		return c.loops[i].Idx0() < c.loops[j].Idx0()
	})
	return c.loops
}

type collector struct {
	seen  map[ast.Node]bool
	loops []ast.Node
}

func (c *collector) walk(v reflect.Value) {
	switch v.Kind() {
	case reflect.Interface:
		if !v.IsNil() {
			c.walk(v.Elem())
		}
	case reflect.Ptr:
		if v.IsNil() || v.Type() == filePtrType {
			return
		}
		if n, ok := v.Interface().(ast.Node); ok {
			// Declaration lists share nodes with the statement tree
			if c.seen[n] {
				return
			}
			c.seen[n] = true
			if loopBody(n) != nil {
				c.loops = append(c.loops, n)
			}
		}
		c.walk(v.Elem())
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).IsExported() {
				c.walk(v.Field(i))
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			c.walk(v.Index(i))
		}
	}
}
