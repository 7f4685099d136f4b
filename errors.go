// errors.go — the error taxonomy (§6/§7) and user-facing formatting.
//
// Two families exist: *LexError (a tokenizer failure, folded into compile
// errors by the parser) and *CompileError / *RuntimeError, the taxonomy
// spec §6 names explicitly. All three format to the single-line strings the
// host-facing Load() API promises:
//
//	[Compile Error] Line N: <message>
//	[Runtime Error] Line N: <message>
//
// WrapErrorWithSource renders a richer, caret-annotated snippet of the same
// error for interactive use (the REPL uses this form); Environment's public
// GetErrorMessage uses the plain one-line form.
package cflat

import (
	"fmt"
	"strings"
)

// LexError is raised by the tokenizer (lexer.go) on malformed input.
type LexError struct {
	Line int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("[Compile Error] Line %d: %s", e.Line, e.Msg)
}

// CompileErrorKind enumerates the compile-time error taxonomy of §6.
type CompileErrorKind int

const (
	UnexpectedSymbol CompileErrorKind = iota
	UndefinedVariable
	VariableRedefinition
	NoDefaultConstructor
	InvalidMemberAccessOperatorPtr
	InvalidMemberAccessOperatorNonPtr
	InvalidOperator
	MissingMember
	NonIntegerValue
)

var compileErrorTemplates = map[CompileErrorKind]string{
	UnexpectedSymbol:                   "unexpected symbol %s",
	UndefinedVariable:                  "undefined variable ('%s')",
	VariableRedefinition:               "variable redefinition ('%s')",
	NoDefaultConstructor:               "no default constructor for type ('%s')",
	InvalidMemberAccessOperatorPtr:     "invalid member access operator '.' used on pointer ('%s')",
	InvalidMemberAccessOperatorNonPtr:  "invalid member access operator '->' used on non-pointer ('%s')",
	InvalidOperator:                    "invalid operator ('%s')",
	MissingMember:                      "missing member ('%s')",
	NonIntegerValue:                    "non integer value ('%s')",
}

// CompileError is a parse-time failure. The Program remains partially built
// but Environment.Load reports false and surfaces this via GetErrorMessage.
type CompileError struct {
	Kind CompileErrorKind
	Line int
	Args []string
}

func NewCompileError(kind CompileErrorKind, line int, args ...string) *CompileError {
	return &CompileError{Kind: kind, Line: line, Args: args}
}

func (e *CompileError) message() string {
	tmpl := compileErrorTemplates[e.Kind]
	anyArgs := make([]any, len(e.Args))
	for i, a := range e.Args {
		anyArgs[i] = a
	}
	return fmt.Sprintf(tmpl, anyArgs...)
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[Compile Error] Line %d: %s", e.Line, e.message())
}

// RuntimeErrorKind enumerates the runtime error taxonomy of §6.
type RuntimeErrorKind int

const (
	NullPointerAccess RuntimeErrorKind = iota
	InvalidArrayIndex
	DivisionByZero
)

var runtimeErrorTemplates = map[RuntimeErrorKind]string{
	NullPointerAccess: "null pointer access",
	InvalidArrayIndex: "invalid array index (%s)",
	DivisionByZero:    "division by zero",
}

// RuntimeError is a failure during statement execution. It aborts the
// current statement, propagates to Environment.Execute, and is surfaced via
// GetErrorMessage.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Line int
	Args []string
}

func NewRuntimeError(kind RuntimeErrorKind, line int, args ...string) *RuntimeError {
	return &RuntimeError{Kind: kind, Line: line, Args: args}
}

func (e *RuntimeError) message() string {
	tmpl := runtimeErrorTemplates[e.Kind]
	anyArgs := make([]any, len(e.Args))
	for i, a := range e.Args {
		anyArgs[i] = a
	}
	return fmt.Sprintf(tmpl, anyArgs...)
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[Runtime Error] Line %d: %s", e.Line, e.message())
}

// WrapErrorWithSource renders a Python-style caret-annotated snippet for
// *LexError/*CompileError/*RuntimeError. Any other error is returned
// unchanged. Used by the REPL; the plain one-line form (Error()) is what
// Environment.GetErrorMessage returns per the host-facing API contract.
func WrapErrorWithSource(err error, src string) error {
	var line int
	var header, msg string
	switch e := err.(type) {
	case *LexError:
		header, line, msg = "LEXICAL ERROR", e.Line, e.Msg
	case *CompileError:
		header, line, msg = "COMPILE ERROR", e.Line, e.message()
	case *RuntimeError:
		header, line, msg = "RUNTIME ERROR", e.Line, e.message()
	default:
		return err
	}
	return fmt.Errorf("%s", prettySnippet(src, header, line, msg))
}

func prettySnippet(src, header string, line int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s at line %d: %s\n\n", header, line, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
