package environment

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"
)

const (
	DEFAULT_PAGE_LIMIT = 100
)

// Color modes accepted by GCOMP_COLOR.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

func GetLogLevel(runner *interp.Runner) zap.AtomicLevel {
	logLevel, err := zap.ParseAtomicLevel(runner.Vars["GCOMP_LOG_LEVEL"].String())
	if err != nil {
		logLevel = zap.NewAtomicLevel()
	}
	return logLevel
}

func ShouldCleanLogFile(runner *interp.Runner) bool {
	return isTruthy(runner.Vars["GCOMP_CLEAN_LOG_FILE"].String())
}

func GetPwd(runner *interp.Runner) string {
	return runner.Vars["PWD"].String()
}

func GetHomeDir(runner *interp.Runner) string {
	return runner.Vars["HOME"].String()
}

func GetPath(runner *interp.Runner) string {
	return runner.Vars["PATH"].String()
}

// GetPageLimit returns how many matches are rendered at once. Zero or a
// negative value means no limit.
func GetPageLimit(runner *interp.Runner, logger *zap.Logger) int {
	value := runner.Vars["GCOMP_PAGE_LIMIT"].String()
	if value == "" {
		return DEFAULT_PAGE_LIMIT
	}
	pageLimit, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		logger.Debug("error parsing GCOMP_PAGE_LIMIT", zap.Error(err))
		return DEFAULT_PAGE_LIMIT
	}
	return int(pageLimit)
}

func GetStaticCompletionsFile(runner *interp.Runner) string {
	return runner.Vars["GCOMP_STATIC_COMPLETIONS"].String()
}

// IsFuzzyFallbackEnabled defaults to true; only an explicit false value
// turns it off.
func IsFuzzyFallbackEnabled(runner *interp.Runner) bool {
	value := strings.ToLower(runner.Vars["GCOMP_FUZZY_FALLBACK"].String())
	return value != "0" && value != "false"
}

func GetColorMode(runner *interp.Runner, logger *zap.Logger) string {
	mode := strings.ToLower(runner.Vars["GCOMP_COLOR"].String())
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode
	case "":
		return ColorAuto
	}
	logger.Debug("unknown GCOMP_COLOR value", zap.String("value", mode))
	return ColorAuto
}

func isTruthy(value string) bool {
	value = strings.ToLower(value)
	return value == "1" || value == "true"
}
