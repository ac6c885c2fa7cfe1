package core

import (
	"context"
	"strings"

	"github.com/robottwo/gcomp/internal/completion"
	"github.com/robottwo/gcomp/internal/environment"
	"github.com/robottwo/gcomp/internal/history"
	"github.com/robottwo/gcomp/pkg/shellargs"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

// CommentChar starts a comment line, which is never completed.
const CommentChar = '#'

// builtinNames are offered as command names next to executables on PATH.
var builtinNames = []string{
	"alias", "cd", "compgen", "complete", "echo", "exit", "export",
	"history", "popd", "pushd", "source", "type", "unset",
}

type Status int

const (
	StatusNoMatches Status = iota
	StatusMatches
	// StatusUniqueMatch means Line holds the command line with the only
	// match inserted.
	StatusUniqueMatch
	// StatusHistorySubstitution means Line holds the history entry named by
	// a repeat expression such as "!!".
	StatusHistorySubstitution
)

func (s Status) String() string {
	switch s {
	case StatusMatches:
		return "matches"
	case StatusUniqueMatch:
		return "unique"
	case StatusHistorySubstitution:
		return "history"
	}
	return "none"
}

// Result is the outcome of completing a command line.
type Result struct {
	Status  Status
	Matches []string
	// Prefix is the part of the cursor argument that is already typed.
	Prefix string
	// CommonPrefix is what every match adds to Prefix.
	CommonPrefix string
	// Line and CursorPos are the command line and cursor after completion.
	Line         string
	CursorPos    int
	WordComplete bool
	Page         completion.Page
}

// HistoryStore is the command history the completer reads from.
type HistoryStore interface {
	completion.HistorySource
	FindString(expr string) (string, error)
}

// Completer completes command lines using the specs registered with
// complete, the built-in providers and the command history.
type Completer struct {
	Runner   *interp.Runner
	Manager  *completion.CompletionManager
	History  HistoryStore
	Static   *completion.StaticCompleter
	Defaults *completion.DefaultCompleter
	Git      *completion.GitCompleter
	Stderr   *StderrCapturer
	Logger   *zap.Logger

	// PathEnv and Fuzzy configure command name completion.
	PathEnv string
	Fuzzy   bool
}

// NewCompleter creates a Completer configured from the runner's variables.
// historyStore may be nil.
func NewCompleter(runner *interp.Runner, manager *completion.CompletionManager, historyStore HistoryStore, logger *zap.Logger) *Completer {
	if logger == nil {
		logger = zap.NewNop()
	}

	static := completion.NewStaticCompleter()
	if file := environment.GetStaticCompletionsFile(runner); file != "" {
		if err := static.LoadFile(file); err != nil {
			logger.Warn("error loading static completions", zap.String("file", file), zap.Error(err))
		}
	}

	pwd := environment.GetPwd(runner)
	return &Completer{
		Runner:   runner,
		Manager:  manager,
		History:  historyStore,
		Static:   static,
		Defaults: &completion.DefaultCompleter{WorkingDir: pwd, Environ: exportedVariables(runner)},
		Git:      &completion.GitCompleter{WorkingDir: pwd},
		Logger:   logger,
		PathEnv:  environment.GetPath(runner),
		Fuzzy:    environment.IsFuzzyFallbackEnabled(runner),
	}
}

func exportedVariables(runner *interp.Runner) []string {
	environ := make([]string, 0, len(runner.Vars))
	for name, vr := range runner.Vars {
		if vr.Exported {
			environ = append(environ, name+"="+vr.String())
		}
	}
	return environ
}

// HandleCompletion completes line with the cursor at cursor (in runes).
func (c *Completer) HandleCompletion(ctx context.Context, line string, cursor int, page completion.Page) Result {
	request := completion.NewRequest(line, cursor, page, nil)
	result := Result{
		Line:      line,
		CursorPos: request.RawCursorPos(),
		Page:      page,
	}

	first, _ := request.ParsedLine().Arg(0)
	if first.Quote == 0 && strings.HasPrefix(first.Value, string(CommentChar)) {
		return result
	}
	if history.IsExpression(first.Value) && first.Quote == 0 {
		return c.substituteHistory(first.Value, result)
	}

	if c.Stderr != nil {
		c.Stderr.StartCapture()
		defer func() {
			if stderr := c.Stderr.StopCapture(); stderr != "" {
				c.Logger.Debug("completion wrote to stderr", zap.String("stderr", stderr))
			}
		}()
	}

	moved := c.dispatch(ctx, request)

	matches := lo.Uniq(request.Matches().Strings())
	c.Logger.Debug("completion finished",
		zap.String("line", line),
		zap.Int("cursorIndex", request.CursorIndex()),
		zap.Int("matches", len(matches)))
	if len(matches) == 0 {
		return result
	}

	typed := request.CursorArgumentPrefix()
	common := completion.NewStringList(matches...).LongestCommonPrefix()
	suffix := ""
	if request.CursorIndex() >= 0 && strings.HasPrefix(common, typed) {
		suffix = common[len(typed):]
	}

	result.Status = StatusMatches
	result.Matches = matches
	result.Prefix = typed
	result.CommonPrefix = suffix
	result.WordComplete = request.WordComplete()

	if len(matches) == 1 && request.CursorIndex() >= 0 && request.WordComplete() && strings.HasPrefix(matches[0], typed) {
		quote := request.CursorArgumentQuote()
		insert := shellargs.Escape(suffix, quote)
		if quote != 0 {
			insert += string(quote)
		}
		insert += " "
		if moved {
			insert = " " + insert
		}

		runes := []rune(line)
		pos := request.RawCursorPos()
		result.Status = StatusUniqueMatch
		result.Line = string(runes[:pos]) + insert + string(runes[pos:])
		result.CursorPos = pos + len([]rune(insert))
	}
	return result
}

func (c *Completer) substituteHistory(expr string, result Result) Result {
	if c.History == nil {
		return result
	}
	command, err := c.History.FindString(expr)
	if err != nil {
		c.Logger.Debug("history substitution failed", zap.String("expr", expr), zap.Error(err))
		return result
	}

	result.Status = StatusHistorySubstitution
	result.Matches = []string{command}
	result.Line = command
	result.CursorPos = len([]rune(command))
	return result
}

// dispatch runs the providers for the cursor argument. It reports whether
// the cursor was moved from a complete command name to its first argument.
func (c *Completer) dispatch(ctx context.Context, request *completion.Request) bool {
	if request.CursorIndex() <= 0 {
		c.runLogged(ctx, request, c.commandNames())

		// "git" followed by more arguments completes git's subcommands
		matches := request.Matches()
		name := request.CommandName()
		if request.CursorIndex() == 0 && matches.Len() == 1 && matches.At(0) == name &&
			c.isMultiword(name) && request.ParsedLine().Len() > 1 {
			matches.Clear()
			request.ParsedLine().Insert(1, "", 0)
			request.SetCursorIndex(1)
			request.SetCursorCharPosition(0)
			c.completeArguments(ctx, request)
			return true
		}
		return false
	}

	c.completeArguments(ctx, request)
	return false
}

func (c *Completer) completeArguments(ctx context.Context, request *completion.Request) {
	command := request.CommandName()

	if c.Manager != nil {
		if spec, ok := c.Manager.GetSpec(command); ok {
			c.runLogged(ctx, request, &completion.SpecProvider{Manager: c.Manager, Runner: c.Runner, Spec: spec})
			if request.Matches().Len() == 0 && spec.HasOption(completion.OptionDefault) {
				c.runLogged(ctx, request, c.files())
			}
			return
		}
	}

	pipeline := completion.NewPipeline(c.Logger)
	if c.Static != nil && c.Static.Has(command) {
		pipeline.Add(c.Static)
	}
	if c.Git != nil && command == "git" {
		pipeline.Add(c.Git)
	}
	if c.Defaults != nil {
		if provider, ok := c.Defaults.ProviderFor(command); ok {
			pipeline.Add(provider)
		}
	}
	if c.History != nil {
		pipeline.Add(&completion.HistoryCompleter{Source: c.History})
	}
	if err := pipeline.Run(ctx, request); err != nil {
		c.Logger.Debug("completion cancelled", zap.Error(err))
		return
	}

	if request.Matches().Len() == 0 {
		c.runLogged(ctx, request, c.files())
	}
}

func (c *Completer) runLogged(ctx context.Context, request *completion.Request, provider completion.Provider) {
	if err := completion.NewPipeline(c.Logger, provider).Run(ctx, request); err != nil {
		c.Logger.Debug("completion cancelled", zap.Error(err))
	}
}

func (c *Completer) commandNames() *completion.CommandNameCompleter {
	extra := append([]string{}, builtinNames...)
	if c.Manager != nil {
		extra = append(extra, c.Manager.Commands()...)
	}
	return &completion.CommandNameCompleter{
		PathEnv: c.PathEnv,
		Extra:   extra,
		Fuzzy:   c.Fuzzy,
	}
}

func (c *Completer) files() *completion.FileCompleter {
	workingDir := ""
	if c.Defaults != nil {
		workingDir = c.Defaults.WorkingDir
	}
	return &completion.FileCompleter{WorkingDir: workingDir}
}

// isMultiword reports whether command takes subcommands.
func (c *Completer) isMultiword(command string) bool {
	if c.Static != nil && c.Static.Has(command) {
		return true
	}
	if c.Manager != nil {
		_, ok := c.Manager.GetSpec(command)
		return ok
	}
	return false
}
