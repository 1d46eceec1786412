package site

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// runHook runs a shell script in dir with the built-in interpreter, so hooks
// behave the same on every platform.
func runHook(ctx context.Context, script, dir string, stdout, stderr io.Writer) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(script), "post_build")
	if err != nil {
		return fmt.Errorf("parse post_build: %w", err)
	}

	runner, err := interp.New(interp.Dir(dir), interp.StdIO(nil, stdout, stderr))
	if err != nil {
		return err
	}

	if err := runner.Run(ctx, file); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return fmt.Errorf("post_build exited with %d", status)
		}

		return err
	}

	return nil
}
