package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"persuader"
	"persuader/internal/config"
	"persuader/internal/introspect"
	"persuader/internal/orchestrator"
	"persuader/internal/prompt"
	perrors "persuader/pkg/errors"
	"persuader/pkg/schema"
	"persuader/pkg/value"
)

type runFlags struct {
	schemaPath string
	inputGlob  string
	outputPath string
	sessionID  string
	context    string
	lens       string
	retries    int
	model      string
	dryRun     bool
	verbose    bool
	debug      bool
}

func newRunCmd() *cobra.Command {
	f := &runFlags{retries: -1}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Validate one or more inputs against a schema via the retry loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersuade(cmd, f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.schemaPath, "schema", "", "path to a JSON schema definition file (required)")
	flags.StringVar(&f.inputGlob, "input", "", "path or glob of input file(s) to process (required)")
	flags.StringVar(&f.outputPath, "output", "", "output path; stdout when omitted and a single input is processed")
	flags.StringVar(&f.sessionID, "session-id", "", "reuse this logical session across inputs")
	flags.StringVar(&f.context, "context", "", "durable system instruction sent once per session")
	flags.StringVar(&f.lens, "lens", "", "per-call perspective modifier")
	flags.IntVar(&f.retries, "retries", -1, "additional attempts after the first (default: config/orchestrator default)")
	flags.StringVar(&f.model, "model", "", "model name passed through to the provider adapter")
	flags.BoolVar(&f.dryRun, "dry-run", false, "compose the first prompt and print it without contacting a provider")
	flags.BoolVar(&f.verbose, "verbose", false, "print per-input progress, attempt count and execution time to stderr")
	flags.BoolVar(&f.debug, "debug", false, "same output as --verbose")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runPersuade(cmd *cobra.Command, f *runFlags) error {
	schemaBytes, err := os.ReadFile(f.schemaPath)
	if err != nil {
		return ioError("read schema file: %w", err)
	}
	sch, err := schema.FromJSON(schemaBytes)
	if err != nil {
		return configError("schema", err.Error())
	}

	inputs, err := filepath.Glob(f.inputGlob)
	if err != nil {
		return ioError("expand --input glob: %w", err)
	}
	if len(inputs) == 0 {
		if _, statErr := os.Stat(f.inputGlob); statErr == nil {
			inputs = []string{f.inputGlob}
		} else {
			return ioError("no input files matched %q: %w", f.inputGlob, statErr)
		}
	}

	if f.dryRun {
		return runDryRun(cmd, sch, inputs[0])
	}

	cfgDir := os.Getenv("PERSUADER_CONFIG_DIR")
	if cfgDir == "" {
		cfgDir = "."
	}
	cfg, err := config.NewLoader(cfgDir).LoadConfig()
	if err != nil {
		return configError("config", err.Error())
	}

	orch, err := persuader.Build(cfg)
	if err != nil {
		return configError("orchestrator", err.Error())
	}

	retries := cfg.Orchestrator.Retries
	if f.retries >= 0 {
		retries = f.retries
	}

	for i, inputPath := range inputs {
		raw, err := os.ReadFile(inputPath)
		if err != nil {
			return ioError("read input file %q: %w", inputPath, err)
		}
		inputValue, err := value.FromJSON(raw)
		if err != nil {
			inputValue = value.String(string(raw))
		}

		opts := orchestrator.NewOptions()
		opts.Schema = sch
		opts.Input = inputValue
		opts.Context = f.context
		opts.Lens = f.lens
		opts.SessionID = f.sessionID
		opts.Retries = retries
		opts.Provider = cfg.Orchestrator.DefaultProvider
		opts.Model = f.model

		if f.verbose || f.debug {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s: running\n", i+1, len(inputs), inputPath)
		}

		result, rerr := orch.Persuade(cmd.Context(), opts)
		if f.sessionID == "" && result != nil {
			f.sessionID = result.SessionID // chain subsequent inputs onto the session just created
		}
		if rerr != nil {
			return classifyRunError(rerr)
		}
		if err := writeResult(f.outputPath, len(inputs), i, result); err != nil {
			return ioError("write output: %w", err)
		}
		if f.verbose || f.debug {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s: ok in %d attempt(s), %s\n",
				i+1, len(inputs), inputPath, result.Attempts, result.Metadata.ExecutionTime)
		}
	}
	return nil
}

func runDryRun(cmd *cobra.Command, sch *schema.Schema, firstInput string) error {
	raw, err := os.ReadFile(firstInput)
	if err != nil {
		return ioError("read input file: %w", err)
	}
	inputValue, err := value.FromJSON(raw)
	if err != nil {
		inputValue = value.String(string(raw))
	}

	example := introspect.Example(sch)
	composed := prompt.Compose(prompt.Parts{
		Example:    example,
		HasExample: true,
		Input:      prompt.InputFor(inputValue),
	})
	fmt.Fprintln(cmd.OutOrStdout(), composed)
	fmt.Fprintf(cmd.ErrOrStderr(), "estimated tokens: %d\n", prompt.EstimateTokens(composed))
	return nil
}

func writeResult(outputPath string, total, index int, result *orchestrator.Result) error {
	out, err := result.Value.ToJSON()
	if err != nil {
		return err
	}
	if outputPath == "" {
		fmt.Println(string(out))
		return nil
	}
	path := outputPath
	if total > 1 {
		ext := filepath.Ext(outputPath)
		base := outputPath[:len(outputPath)-len(ext)]
		path = fmt.Sprintf("%s.%d%s", base, index, ext)
	}
	return os.WriteFile(path, out, 0o644)
}

func classifyRunError(err error) error {
	switch err.(type) {
	case *perrors.ValidationError:
		return &exitError{code: 1, err: err}
	case *perrors.ProviderError:
		return &exitError{code: 2, err: err}
	case *perrors.ConfigurationError:
		return &exitError{code: 3, err: err}
	case *perrors.CancelledError, *perrors.SessionError:
		return &exitError{code: 2, err: err}
	default:
		return &exitError{code: 4, err: err}
	}
}

func configError(field, message string) error {
	return &exitError{code: 3, err: perrors.NewConfigurationError(perrors.ComponentConfig, field, message)}
}

func ioError(format string, args ...interface{}) error {
	return &exitError{code: 4, err: fmt.Errorf(format, args...)}
}

// exitError carries the process exit code alongside the underlying error
// so main can translate it without re-deriving the classification.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return 4
}
