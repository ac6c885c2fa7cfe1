package completion

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/robottwo/gcomp/pkg/shellargs"
	"mvdan.cc/sh/v3/interp"
)

// NewCompgenCommandHandler creates a new ExecHandler for the compgen command.
// getRunner returns the runner that -F functions are called in; it is usually
// the runner this handler is installed in, which does not exist yet when the
// handler is created.
func NewCompgenCommandHandler(getRunner func() *interp.Runner) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != "compgen" {
				return next(ctx, args)
			}

			return handleCompgenCommand(ctx, interp.HandlerCtx(ctx).Stdout, getRunner(), args[1:])
		}
	}
}

func handleCompgenCommand(ctx context.Context, stdout io.Writer, runner *interp.Runner, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("compgen: no options specified")
	}

	var (
		wordList     string
		functionName string
		word         string // The word to generate completions for
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-W":
			if i+1 >= len(args) {
				return fmt.Errorf("option -W requires a word list")
			}
			i++
			wordList = args[i]
		case "-F":
			if i+1 >= len(args) {
				return fmt.Errorf("option -F requires a function name")
			}
			i++
			functionName = args[i]
		case "--":
			if i+1 < len(args) {
				word = args[i+1]
			}
			i = len(args)
		default:
			if strings.HasPrefix(arg, "-") {
				return fmt.Errorf("unknown option: %s", arg)
			}
			word = arg
		}
	}

	if wordList != "" {
		return generateWordListCompletions(stdout, word, wordList)
	}

	if functionName != "" {
		return generateFunctionCompletions(ctx, stdout, runner, functionName, word)
	}

	return fmt.Errorf("compgen: no completion type specified")
}

func generateWordListCompletions(stdout io.Writer, word string, wordList string) error {
	for _, w := range shellargs.Parse(wordList).Strings() {
		if strings.HasPrefix(w, word) {
			_, _ = fmt.Fprintln(stdout, w)
		}
	}
	return nil
}

func generateFunctionCompletions(ctx context.Context, stdout io.Writer, runner *interp.Runner, functionName string, word string) error {
	fn := NewCompletionFunction(functionName, runner)

	// complete the word as the only argument of an anonymous command
	line := "compgen " + shellargs.Escape(word, 0)
	request := NewRequest(line, len([]rune(line)), FullPage, nil)
	completions, err := fn.Execute(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to execute completion function: %w", err)
	}

	for _, completion := range completions {
		if strings.HasPrefix(completion, word) {
			_, _ = fmt.Fprintln(stdout, completion)
		}
	}
	return nil
}
