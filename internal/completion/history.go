package completion

import (
	"context"

	"github.com/robottwo/gcomp/pkg/shellargs"
	"github.com/samber/lo"
)

// defaultHistoryLimit is how many past commands are scanned per request.
const defaultHistoryLimit = 500

// HistorySource provides previously executed command lines, most recent
// first.
type HistorySource interface {
	GetRecentCommands(limit int) ([]string, error)
}

// HistoryCompleter offers arguments that were typed at the same position
// after the same command in earlier command lines.
type HistoryCompleter struct {
	Source HistorySource
	Limit  int
}

func (h *HistoryCompleter) Complete(ctx context.Context, request *Request) error {
	index := request.CursorIndex()
	if h.Source == nil || index < 1 {
		return nil
	}

	limit := h.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	commands, err := h.Source.GetRecentCommands(limit)
	if err != nil {
		return err
	}

	command := request.CommandName()
	words := make([]string, 0)
	for _, line := range commands {
		args := shellargs.Parse(line)
		if args.Len() <= index || args.At(0) != command {
			continue
		}
		if word := args.At(index); word != "" {
			words = append(words, word)
		}
	}

	before := request.Matches().Len()
	filterByPrefix(request, lo.Uniq(words))
	// past arguments are whole words, but never override another provider
	if before == 0 && request.Matches().Len() > 0 {
		request.SetWordComplete(true)
	}
	return nil
}
