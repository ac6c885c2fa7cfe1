package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/robottwo/gcomp/internal/bash"
	"github.com/robottwo/gcomp/internal/completion"
	"github.com/robottwo/gcomp/internal/core"
	"github.com/robottwo/gcomp/internal/environment"
	"github.com/robottwo/gcomp/internal/history"
	"github.com/robottwo/gcomp/internal/termfeatures"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

var BUILD_VERSION = "dev"

//go:embed .gcomprc.default
var DEFAULT_VARS []byte

var line = flag.String("line", "", "command line to complete (defaults to $COMP_LINE)")
var point = flag.Int("point", -1, "cursor position in characters (defaults to $COMP_POINT or the end of the line)")
var rcFile = flag.String("rcfile", "", "use a custom rc file instead of ~/.gcomprc")
var strictConfig = flag.Bool("strict-config", false, "fail fast if configuration files contain errors")
var pageStart = flag.Int("page-start", 0, "index of the first match to print")
var pageLimit = flag.Int("page-limit", -1, "number of matches to print, 0 for all (defaults to $GCOMP_PAGE_LIMIT)")
var record = flag.String("record", "", "record a command line in the history instead of completing")
var exitCode = flag.Int("exit-code", 0, "exit code of the command given to -record")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Println("Usage of gcomp:")
		flag.PrintDefaults()
		return
	}

	// Initialize the history manager
	historyManager, err := history.NewHistoryManager(core.HistoryFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "gcomp: failed to open history: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = historyManager.Close()
	}()

	completionManager := completion.NewCompletionManager()
	stderrCapturer := core.NewStderrCapturer(os.Stderr)

	// Initialize the shell interpreter
	runner, err := initializeRunner(historyManager, completionManager, stderrCapturer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gcomp: %v\n", err)
		os.Exit(1)
	}

	// Initialize the logger
	logger, err := initializeLogger(runner)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flush any buffered log entries
	}()

	logger.Info("-------- new gcomp session --------", zap.Any("args", os.Args))

	err = run(context.Background(), runner, historyManager, completionManager, logger, stderrCapturer, os.Stdout)
	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "gcomp: %v\n", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	runner *interp.Runner,
	historyManager *history.HistoryManager,
	completionManager *completion.CompletionManager,
	logger *zap.Logger,
	stderrCapturer *core.StderrCapturer,
	stdout io.Writer,
) error {
	// gcomp -record "git push" -exit-code 1
	if *record != "" {
		return recordCommand(historyManager, *record, environment.GetPwd(runner), *exitCode)
	}

	commandLine, cursor, bashMode := requestLine(*line, *point, os.Getenv)
	page := requestPage(runner, logger)

	// completion functions must not write into the output
	_ = interp.StdIO(nil, io.Discard, stderrCapturer)(runner)

	completer := core.NewCompleter(runner, completionManager, historyManager, logger)
	completer.Stderr = stderrCapturer

	result := completer.HandleCompletion(ctx, commandLine, cursor, page)
	logger.Debug("completion result",
		zap.Stringer("status", result.Status),
		zap.Int("matches", len(result.Matches)),
		zap.String("line", result.Line))

	// complete -C gcomp: one candidate per line, bash does the rest
	if bashMode {
		if result.Status == core.StatusHistorySubstitution {
			return nil
		}
		for _, match := range result.Matches {
			if _, err := fmt.Fprintln(stdout, match); err != nil {
				return err
			}
		}
		return nil
	}

	caps := termfeatures.Detect(os.Stdout)
	return core.Render(stdout, result, core.RenderOptions{
		Width:   caps.Width,
		Profile: caps.ColorProfile(environment.GetColorMode(runner, logger)),
	})
}

// requestLine resolves the line and cursor to complete. Without -line it
// falls back to the COMP_LINE and COMP_POINT variables bash sets for
// complete -C, where COMP_POINT counts bytes.
func requestLine(line string, point int, getenv func(string) string) (string, int, bool) {
	bashMode := false
	if line == "" {
		if compLine := getenv("COMP_LINE"); compLine != "" {
			line = compLine
			bashMode = true
			if point < 0 {
				if p, err := strconv.Atoi(getenv("COMP_POINT")); err == nil && p >= 0 && p <= len(compLine) {
					point = utf8.RuneCountInString(compLine[:p])
				}
			}
		}
	}

	if point < 0 {
		point = utf8.RuneCountInString(line)
	}
	return line, point, bashMode
}

func requestPage(runner *interp.Runner, logger *zap.Logger) completion.Page {
	limit := *pageLimit
	if limit < 0 {
		limit = environment.GetPageLimit(runner, logger)
	}
	if limit <= 0 {
		limit = completion.NoLimit
	}
	return completion.Page{Start: *pageStart, Limit: limit}
}

func recordCommand(historyManager *history.HistoryManager, command string, directory string, exitCode int) error {
	entry, err := historyManager.StartCommand(command, directory)
	if err != nil {
		return err
	}
	_, err = historyManager.FinishCommand(entry, exitCode)
	return err
}

func initializeLogger(runner *interp.Runner) (*zap.Logger, error) {
	logLevel := environment.GetLogLevel(runner)
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if environment.ShouldCleanLogFile(runner) {
		_ = os.Remove(core.LogFile())
	}

	// Initialize the logger
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// initializeRunner loads the configuration files into a fresh interpreter.
// complete and compgen calls in them register completion specs.
func initializeRunner(historyManager *history.HistoryManager, completionManager *completion.CompletionManager, stderrCapturer *core.StderrCapturer) (*interp.Runner, error) {
	dynamicEnv := environment.NewDynamicEnviron()
	dynamicEnv.UpdateGcompVar("GCOMP_BUILD_VERSION", BUILD_VERSION)
	env := expand.Environ(dynamicEnv)

	var runner *interp.Runner
	runner, err := interp.New(
		interp.Env(env),
		interp.StdIO(nil, os.Stdout, stderrCapturer),
		interp.ExecHandlers(
			history.NewHistoryCommandHandler(historyManager),
			completion.NewCompleteCommandHandler(completionManager),
			// compgen -F calls back into the runner itself
			completion.NewCompgenCommandHandler(func() *interp.Runner { return runner }),
		),
	)
	if err != nil {
		return nil, err
	}

	// load default vars
	if err := bash.RunBashScriptFromReader(
		context.Background(),
		runner,
		bytes.NewReader(DEFAULT_VARS),
		"gcomp",
	); err != nil {
		return nil, err
	}

	configFile := *rcFile
	if configFile == "" {
		configFile = core.RcFile()
	}

	if stat, err := os.Stat(configFile); err == nil && stat.Size() > 0 {
		if err := bash.RunBashScriptFromFile(context.Background(), runner, configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration file %s contains errors: %v\n", configFile, err)

			if *strictConfig {
				return nil, fmt.Errorf("aborting due to configuration error in %s: %w", configFile, err)
			}
		}
	}

	// Sync gcomp variables to the environment of external completers
	environment.SyncVariablesToEnv(runner)

	return runner, nil
}
