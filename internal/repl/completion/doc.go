// Package completion provides path completion for the fsagent REPL.
// It recognizes a trigger symbol (such as "@") in the input line, resolves the
// partial path typed after it and yields matching filesystem entries as
// replacement candidates for the line editor.
package completion
