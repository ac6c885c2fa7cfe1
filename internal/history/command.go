package history

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"mvdan.cc/sh/v3/interp"
)

const defaultListLimit = 20

const historyUsage = `usage: history [N]
       history -c
       history -d ID

Without options, list the last N commands (default 20).
  -c     clear the history
  -d ID  delete the entry with the given ID
`

// NewHistoryCommandHandler creates an ExecHandler for the history builtin.
func NewHistoryCommandHandler(historyManager *HistoryManager) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != "history" {
				return next(ctx, args)
			}

			stdout := io.Discard
			if hc, ok := handlerStdout(ctx); ok {
				stdout = hc
			}
			return handleHistoryCommand(stdout, historyManager, args[1:])
		}
	}
}

// handlerStdout returns the runner's stdout when ctx comes from a runner.
func handlerStdout(ctx context.Context) (w io.Writer, ok bool) {
	defer func() {
		// HandlerCtx panics outside of a handler call
		if recover() != nil {
			w, ok = nil, false
		}
	}()
	hc := interp.HandlerCtx(ctx)
	return hc.Stdout, hc.Stdout != nil
}

func handleHistoryCommand(stdout io.Writer, historyManager *HistoryManager, args []string) error {
	limit := defaultListLimit

	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help":
			_, _ = fmt.Fprint(stdout, historyUsage)
			return nil
		case "-c":
			return historyManager.ResetHistory()
		case "-d":
			if len(args) < 2 {
				return fmt.Errorf("history: -d requires an entry ID")
			}
			id, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("history: invalid entry ID %q", args[1])
			}
			return historyManager.DeleteEntry(uint(id))
		default:
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("history: invalid argument %q", args[0])
			}
			if n > 0 {
				limit = n
			}
		}
	}

	entries, err := historyManager.GetRecentEntries("", limit)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		_, _ = fmt.Fprintf(stdout, "%5d  %s\n", entry.ID, entry.Command)
	}
	return nil
}
