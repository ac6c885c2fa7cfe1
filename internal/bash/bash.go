package bash

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// threadSafeBuffer collects output written from handlers and subprocesses.
type threadSafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *threadSafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func RunBashScriptFromReader(ctx context.Context, runner *interp.Runner, reader io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

func RunBashScriptFromFile(ctx context.Context, runner *interp.Runner, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return RunBashScriptFromReader(ctx, runner, f, filePath)
}

// RunBashCommand runs command in runner and returns what it wrote. The
// runner's standard streams are restored afterwards.
func RunBashCommand(ctx context.Context, runner *interp.Runner, command string) (string, string, error) {
	outBuf := &threadSafeBuffer{}
	errBuf := &threadSafeBuffer{}
	_ = interp.StdIO(nil, outBuf, errBuf)(runner)
	defer func() {
		_ = interp.StdIO(os.Stdin, os.Stdout, os.Stderr)(runner)
	}()

	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return "", "", err
	}

	err = runner.Run(ctx, prog)
	return outBuf.String(), errBuf.String(), err
}
