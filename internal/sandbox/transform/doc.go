// Package transform rewrites guest JavaScript so that every loop body starts
// with a call to the loop guard.
//
// The rewrite is positional: the source is parsed with goja's parser, the
// iteration statements (for, for-in, for-of, while, do-while) are located at
// every nesting depth, and guard calls are spliced into the original text at
// the offsets the AST reports. Untouched text keeps its exact bytes and no
// newlines are added, so runtime error positions still point at the user's
// lines.
//
// Input that fails to parse is not an error for this package. Transform
// returns it unchanged, tagged Unparseable, and the interpreter reports the
// syntax error itself when the executor runs it.
//
//	res := transform.Transform("while (true) {}", transform.DefaultOptions())
//	// res.Source == "while (true) { __loopGuard(0, __loopState, 1000);}"
package transform
