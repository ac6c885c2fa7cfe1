package environment

import (
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// gcompVariableNames lists the variables that configure gcomp
var gcompVariableNames = []string{
	"GCOMP_LOG_LEVEL", "GCOMP_CLEAN_LOG_FILE", "GCOMP_PAGE_LIMIT",
	"GCOMP_STATIC_COMPLETIONS", "GCOMP_FUZZY_FALLBACK", "GCOMP_COLOR",
	"GCOMP_BUILD_VERSION",
}

// DynamicEnviron implements expand.Environ on top of the process
// environment, overlaid with the gcomp variables set by rc files.
type DynamicEnviron struct {
	systemEnv expand.Environ
	gcompVars map[string]string
}

func NewDynamicEnviron() *DynamicEnviron {
	return &DynamicEnviron{
		systemEnv: expand.ListEnviron(os.Environ()...),
		gcompVars: make(map[string]string),
	}
}

// Get retrieves a variable by name, checking gcomp variables first
func (de *DynamicEnviron) Get(name string) expand.Variable {
	if value, exists := de.gcompVars[name]; exists {
		return expand.Variable{
			Exported: true,
			Kind:     expand.String,
			Str:      value,
		}
	}
	return de.systemEnv.Get(name)
}

// Each iterates over gcomp variables, then the rest of the system
// environment
func (de *DynamicEnviron) Each(fn func(name string, vr expand.Variable) bool) {
	for name, value := range de.gcompVars {
		if !fn(name, expand.Variable{
			Exported: true,
			Kind:     expand.String,
			Str:      value,
		}) {
			return
		}
	}

	de.systemEnv.Each(func(name string, vr expand.Variable) bool {
		if _, isGcomp := de.gcompVars[name]; !isGcomp {
			return fn(name, vr)
		}
		return true
	})
}

func (de *DynamicEnviron) UpdateGcompVar(name, value string) {
	de.gcompVars[name] = value
}

func (de *DynamicEnviron) UpdateSystemEnv() {
	de.systemEnv = expand.ListEnviron(os.Environ()...)
}

// SyncVariablesToEnv exports the gcomp variables set in the runner to the
// process environment, so external completers started with complete -C
// see them too.
func SyncVariablesToEnv(runner *interp.Runner) {
	dynamicEnv, ok := runner.Env.(*DynamicEnviron)
	if !ok {
		dynamicEnv = NewDynamicEnviron()
	}

	for _, varName := range gcompVariableNames {
		if varValue, exists := runner.Vars[varName]; exists {
			value := varValue.String()
			if err := os.Setenv(varName, value); err != nil {
				return
			}
			dynamicEnv.UpdateGcompVar(varName, value)
			continue
		}

		_ = os.Unsetenv(varName)
		delete(dynamicEnv.gcompVars, varName)
	}

	dynamicEnv.UpdateSystemEnv()
	runner.Env = dynamicEnv
}

// IsGcompVariable checks if a variable name configures gcomp
func IsGcompVariable(name string) bool {
	for _, gcompVar := range gcompVariableNames {
		if name == gcompVar {
			return true
		}
	}
	return strings.HasPrefix(name, "GCOMP_")
}
