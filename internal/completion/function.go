package completion

import (
	"context"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Variables a completion function reads and writes, as in bash.
var completionVars = []string{"COMP_WORDS", "COMP_CWORD", "COMP_LINE", "COMP_POINT", "COMPREPLY"}

// CompletionFunction runs a shell function registered with complete -F.
type CompletionFunction struct {
	Name   string
	Runner *interp.Runner
}

// NewCompletionFunction creates a new CompletionFunction
func NewCompletionFunction(name string, runner *interp.Runner) *CompletionFunction {
	return &CompletionFunction{
		Name:   name,
		Runner: runner,
	}
}

// Execute calls the function with bash's completion variables set from
// request and returns the contents of COMPREPLY.
func (f *CompletionFunction) Execute(ctx context.Context, request *Request) ([]string, error) {
	if f.Runner == nil {
		return nil, fmt.Errorf("no shell runner for completion function %s", f.Name)
	}
	if f.Runner.Vars == nil {
		f.Runner.Reset()
	}
	if _, ok := f.Runner.Funcs[f.Name]; !ok {
		return nil, fmt.Errorf("completion function %s is not defined", f.Name)
	}

	call, err := f.callStatement(request)
	if err != nil {
		return nil, err
	}
	defer f.unsetCompletionVars(ctx)
	if err := f.Runner.Run(ctx, call); err != nil {
		if _, ok := interp.IsExitStatus(err); !ok {
			return nil, fmt.Errorf("failed to run completion function %s: %w", f.Name, err)
		}
	}

	reply := f.Runner.Vars["COMPREPLY"]
	switch reply.Kind {
	case expand.Indexed:
		return append([]string(nil), reply.List...), nil
	case expand.String:
		if reply.Str == "" {
			return []string{}, nil
		}
		return []string{reply.Str}, nil
	default:
		return []string{}, nil
	}
}

// callStatement builds the script that sets bash's completion variables
// from request and calls `name command word previous`.
func (f *CompletionFunction) callStatement(request *Request) (*syntax.File, error) {
	words := request.ParsedLine().Strings()
	cword := request.CursorIndex()
	if cword < 0 {
		// bash always has a current word, even on an empty line
		words = []string{""}
		cword = 0
	}

	quotedWords, err := quoteAll(words)
	if err != nil {
		return nil, err
	}
	line, err := quoteAll([]string{request.RawLine()})
	if err != nil {
		return nil, err
	}
	args, err := quoteAll([]string{request.CommandName(), request.CursorArgumentPrefix(), request.PreviousArgument()})
	if err != nil {
		return nil, err
	}

	var script strings.Builder
	fmt.Fprintf(&script, "COMP_WORDS=(%s)\n", strings.Join(quotedWords, " "))
	fmt.Fprintf(&script, "COMP_CWORD=%d\n", cword)
	fmt.Fprintf(&script, "COMP_LINE=%s\n", line[0])
	fmt.Fprintf(&script, "COMP_POINT=%d\n", request.RawCursorByteOffset())
	script.WriteString("unset COMPREPLY\n")
	fmt.Fprintf(&script, "%s %s\n", f.Name, strings.Join(args, " "))

	file, err := syntax.NewParser().Parse(strings.NewReader(script.String()), "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse call to %s: %w", f.Name, err)
	}
	return file, nil
}

// unsetCompletionVars removes the completion variables once COMPREPLY has
// been read, so they do not leak into later commands.
func (f *CompletionFunction) unsetCompletionVars(ctx context.Context) {
	file, err := syntax.NewParser().Parse(strings.NewReader("unset "+strings.Join(completionVars, " ")), "")
	if err != nil {
		return
	}
	_ = f.Runner.Run(ctx, file)
}

func quoteAll(values []string) ([]string, error) {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		q, err := syntax.Quote(value, syntax.LangBash)
		if err != nil {
			return nil, fmt.Errorf("cannot quote argument %q: %w", value, err)
		}
		quoted = append(quoted, q)
	}
	return quoted, nil
}
