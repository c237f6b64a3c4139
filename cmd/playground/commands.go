package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/infrastructure/server"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox"
	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/transform"
)

// errRunFailed signals a script that did not succeed; its output is
// already printed.
var errRunFailed = errors.New("run failed")

func newRunCmd() *cobra.Command {
	var (
		asJSON        bool
		maxIterations int
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Execute a script (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			cfg, err := config.Load(config.ResolvePath(configPath))
			if err != nil {
				return err
			}
			if maxIterations > 0 {
				cfg.Sandbox.MaxIterations = maxIterations
			}

			logger := logging.NewNop()
			if verbose {
				logger = logging.NewDevelopment()
			}
			defer logger.Sync()

			exec := sandbox.New(server.SandboxConfig(cfg.Sandbox), sandbox.WithLogger(logger.Component("sandbox")))
			return runScript(cmd.Context(), exec, src, cmd.OutOrStdout(), cmd.ErrOrStderr(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the {output, success} record")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "per-loop iteration budget")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log sandbox events to stdout")
	return cmd
}

func newTransformCmd() *cobra.Command {
	var maxIterations int

	cmd := &cobra.Command{
		Use:   "transform [file]",
		Short: "Print the guarded form of a script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			res := transform.Transform(src, transform.Options{MaxIterations: maxIterations})
			if res.Outcome == transform.Unparseable {
				fmt.Fprintf(cmd.ErrOrStderr(), "not guarded: %v\n", res.Err)
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Source)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "per-loop iteration budget")
	return cmd
}

func runScript(ctx context.Context, exec *sandbox.Executor, src string, stdout, stderr io.Writer, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	res := exec.Execute(ctx, src)
	elapsed := time.Since(start)

	if asJSON {
		data, err := res.Encode()
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
	} else {
		fmt.Fprint(stdout, res.Output)
		fmt.Fprintf(stderr, "[%s in %s]\n", res.Kind, elapsed.Round(time.Microsecond))
	}

	if !res.Success {
		return errRunFailed
	}
	return nil
}

func readSource(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}
