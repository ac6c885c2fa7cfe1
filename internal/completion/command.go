package completion

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/interp"
)

// NewCompleteCommandHandler creates a new ExecHandler for the complete command
func NewCompleteCommandHandler(completionManager *CompletionManager) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != "complete" {
				return next(ctx, args)
			}

			return handleCompleteCommand(interp.HandlerCtx(ctx).Stdout, completionManager, args[1:])
		}
	}
}

func handleCompleteCommand(stdout io.Writer, manager *CompletionManager, args []string) error {
	if len(args) == 0 {
		// No arguments - print all completion specs
		return printCompletionSpecs(stdout, manager, "")
	}

	var (
		printMode  bool
		removeMode bool
		wordList   string
		function   string
		commandCmd string
		options    []string
		commands   []string
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-p":
			printMode = true
		case "-r":
			removeMode = true
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
			function = args[i]
		case "-C":
			if i+1 >= len(args) {
				return fmt.Errorf("option -C requires a command")
			}
			i++
			commandCmd = args[i]
		case "-o":
			if i+1 >= len(args) {
				return fmt.Errorf("option -o requires an option name")
			}
			i++
			if args[i] != OptionNoSpace && args[i] != OptionDefault {
				return fmt.Errorf("unsupported completion option: %s", args[i])
			}
			options = append(options, args[i])
		default:
			if strings.HasPrefix(arg, "-") {
				return fmt.Errorf("unknown option: %s", arg)
			}
			commands = append(commands, arg)
		}
	}

	if printMode {
		if len(commands) == 0 {
			return printCompletionSpecs(stdout, manager, "")
		}
		for _, command := range commands {
			if err := printCompletionSpecs(stdout, manager, command); err != nil {
				return err
			}
		}
		return nil
	}

	if len(commands) == 0 {
		return fmt.Errorf("no command specified")
	}

	if removeMode {
		for _, command := range commands {
			manager.RemoveSpec(command)
		}
		return nil
	}

	var spec CompletionSpec
	switch {
	case wordList != "":
		spec = CompletionSpec{Type: WordListCompletion, Value: wordList}
	case function != "":
		spec = CompletionSpec{Type: FunctionCompletion, Value: function}
	case commandCmd != "":
		spec = CompletionSpec{Type: CommandCompletion, Value: commandCmd}
	default:
		return fmt.Errorf("invalid complete command usage")
	}
	spec.Options = options

	for _, command := range commands {
		spec.Command = command
		manager.AddSpec(spec)
	}
	return nil
}

func printCompletionSpecs(stdout io.Writer, manager *CompletionManager, command string) error {
	if command != "" {
		if spec, ok := manager.GetSpec(command); ok {
			printCompletionSpec(stdout, spec)
		}
		return nil
	}

	for _, spec := range manager.ListSpecs() {
		printCompletionSpec(stdout, spec)
	}
	return nil
}

func printCompletionSpec(stdout io.Writer, spec CompletionSpec) {
	var options string
	for _, o := range spec.Options {
		options += "-o " + o + " "
	}

	switch spec.Type {
	case WordListCompletion:
		_, _ = fmt.Fprintf(stdout, "complete %s-W %q %s\n", options, spec.Value, spec.Command)
	case FunctionCompletion:
		_, _ = fmt.Fprintf(stdout, "complete %s-F %s %s\n", options, spec.Value, spec.Command)
	case CommandCompletion:
		_, _ = fmt.Fprintf(stdout, "complete %s-C %q %s\n", options, spec.Value, spec.Command)
	}
}
