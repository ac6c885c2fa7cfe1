package completion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/robottwo/gcomp/pkg/shellargs"
	"github.com/samber/lo"
	"mvdan.cc/sh/v3/interp"
)

// CompletionType represents the type of completion
type CompletionType string

const (
	// WordListCompletion represents word list based completion (-W option)
	WordListCompletion CompletionType = "W"
	// FunctionCompletion represents function based completion (-F option)
	FunctionCompletion CompletionType = "F"
	// CommandCompletion represents command based completion (-C option)
	CommandCompletion CompletionType = "C"
)

const (
	// OptionNoSpace keeps a unique match from being followed by a space
	OptionNoSpace = "nospace"
	// OptionDefault falls back to file completion when the spec finds nothing
	OptionDefault = "default"
)

// CompletionSpec represents a completion specification for a command
type CompletionSpec struct {
	Command string
	Type    CompletionType
	Value   string   // function name, wordlist, or command
	Options []string // additional options given with -o
}

// HasOption reports whether the spec was registered with -o option.
func (s CompletionSpec) HasOption(option string) bool {
	return lo.Contains(s.Options, option)
}

// CompletionManager manages command completion specifications
type CompletionManager struct {
	specs map[string]CompletionSpec
}

// NewCompletionManager creates a new CompletionManager
func NewCompletionManager() *CompletionManager {
	return &CompletionManager{
		specs: make(map[string]CompletionSpec),
	}
}

// AddSpec adds or updates a completion specification
func (m *CompletionManager) AddSpec(spec CompletionSpec) {
	m.specs[spec.Command] = spec
}

// RemoveSpec removes a completion specification
func (m *CompletionManager) RemoveSpec(command string) {
	delete(m.specs, command)
}

// GetSpec retrieves a completion specification
func (m *CompletionManager) GetSpec(command string) (CompletionSpec, bool) {
	spec, ok := m.specs[command]
	return spec, ok
}

// ListSpecs returns all completion specifications sorted by command
func (m *CompletionManager) ListSpecs() []CompletionSpec {
	specs := lo.Values(m.specs)
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Command < specs[j].Command
	})
	return specs
}

// Commands returns the names of all commands with a specification
func (m *CompletionManager) Commands() []string {
	commands := lo.Keys(m.specs)
	sort.Strings(commands)
	return commands
}

// ExecuteCompletion runs spec against request and appends what it produces
// to the request's matches.
func (m *CompletionManager) ExecuteCompletion(ctx context.Context, runner *interp.Runner, spec CompletionSpec, request *Request) error {
	request.SetWordComplete(!spec.HasOption(OptionNoSpace))

	switch spec.Type {
	case WordListCompletion:
		filterByPrefix(request, shellargs.Parse(spec.Value).Strings())
		return nil

	case FunctionCompletion:
		fn := NewCompletionFunction(spec.Value, runner)
		completions, err := fn.Execute(ctx, request)
		if err != nil {
			return err
		}
		request.Matches().AppendStrings(completions...)
		return nil

	case CommandCompletion:
		completions, err := m.RunExternalCompleter(ctx, spec.Value, request)
		if err != nil {
			return err
		}
		request.Matches().AppendStrings(completions...)
		return nil

	default:
		return fmt.Errorf("unsupported completion type: %s", spec.Type)
	}
}

// RunExternalCompleter executes an external command to generate completions
func (m *CompletionManager) RunExternalCompleter(ctx context.Context, command string, request *Request) ([]string, error) {
	// $1 is the command name being completed
	// $2 is the word being completed
	// $3 is the word preceding that
	arg1 := request.CommandName()
	arg2 := request.CursorArgumentPrefix()
	arg3 := request.PreviousArgument()

	env := os.Environ()
	env = append(env, fmt.Sprintf("COMP_LINE=%s", request.RawLine()))
	env = append(env, fmt.Sprintf("COMP_POINT=%d", request.RawCursorByteOffset()))
	env = append(env, "COMP_KEY=9")  // 9 is TAB
	env = append(env, "COMP_TYPE=9") // 9 is TAB

	cmd := exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("%s \"$@\"", command), "--", arg1, arg2, arg3)
	cmd.Env = env

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return []string{}, fmt.Errorf("completion command %q failed: %w", command, err)
	}

	// one completion per line
	lines := strings.Split(out.String(), "\n")
	completions := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			completions = append(completions, l)
		}
	}

	return completions, nil
}

// SpecProvider completes arguments of a command using its registered spec.
type SpecProvider struct {
	Manager CompletionManagerInterface
	Runner  *interp.Runner
	Spec    CompletionSpec
}

func (p *SpecProvider) Complete(ctx context.Context, request *Request) error {
	return p.Manager.ExecuteCompletion(ctx, p.Runner, p.Spec, request)
}
