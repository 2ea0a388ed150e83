package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/harness"
)

// ScenarioReport is the outcome of one scenario file.
type ScenarioReport struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// SuiteReport aggregates every scenario run by one test invocation.
type SuiteReport struct {
	Scenarios []ScenarioReport `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r *SuiteReport) add(s ScenarioReport) {
	r.Scenarios = append(r.Scenarios, s)
	r.Total++
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

func (r SuiteReport) String() string {
	if r.Total == 0 {
		return "No scenarios found."
	}
	var b strings.Builder
	for _, s := range r.Scenarios {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	fmt.Fprintf(&b, "\n%d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)
	if r.Failed == 0 {
		b.WriteString("\n✓ All scenarios passed")
	}
	return b.String()
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		update bool
		filter string
	)

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run storefront scenarios",
		Long: `Run every scenario file in a directory against fresh in-memory storage.

A scenario drives the cart, wishlist, banner and toasts, then checks its
assertions. If <scenarios-dir>/golden/<name>.golden exists the recorded
trace must match it byte for byte.

Exit status is 0 when every scenario passes, 1 when any fails and 2 for
unusable arguments.

Examples:
  storefront test ./testdata/scenarios
  storefront test ./testdata/scenarios --filter "cart_*"
  storefront test ./testdata/scenarios --update
  storefront test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if _, err := os.Stat(dir); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir), err)
			}
			files, err := findScenarioFiles(dir, filter)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to find scenarios", err)
			}

			report := SuiteReport{Scenarios: []ScenarioReport{}}
			for _, f := range files {
				report.add(runScenario(f, update))
			}
			return writeReport(cmd, rootOpts.Format, report)
		},
	}

	cmd.Flags().BoolVar(&update, "update", false, "rewrite golden traces from this run")
	cmd.Flags().StringVar(&filter, "filter", "", "only run scenarios whose name matches this glob")

	return cmd
}

// findScenarioFiles lists .yaml and .yml files under dir, optionally
// keeping only those whose base name matches the glob filter.
func findScenarioFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", filter, err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func runScenario(path string, update bool) ScenarioReport {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return ScenarioReport{Name: filepath.Base(path), Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)}}
	}
	report := ScenarioReport{Name: scenario.Name}

	result, err := harness.Run(scenario)
	if err != nil {
		report.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return report
	}
	trace, err := harness.MarshalTrace(scenario.Name, result.Trace)
	if err != nil {
		report.Errors = []string{fmt.Sprintf("failed to marshal trace: %v", err)}
		return report
	}

	if msg := checkGolden(goldenFilePath(path), trace, update); msg != "" {
		report.Errors = append(report.Errors, msg)
	}
	report.Errors = append(report.Errors, result.Errors...)
	report.Pass = len(report.Errors) == 0
	if report.Pass && update {
		report.Name += " (golden updated)"
	}
	return report
}

// checkGolden compares trace with the golden file, or rewrites it when
// update is set. A missing golden file is not a failure.
func checkGolden(path string, trace []byte, update bool) string {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Sprintf("failed to update golden file: %v", err)
		}
		if err := os.WriteFile(path, trace, 0644); err != nil {
			return fmt.Sprintf("failed to update golden file: %v", err)
		}
		return ""
	}
	golden, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ""
	case err != nil:
		return fmt.Sprintf("golden comparison failed: %v", err)
	case !bytes.Equal(golden, trace):
		return "trace does not match golden file (run with --update to regenerate)"
	}
	return ""
}

// goldenFilePath maps dir/name.yaml to dir/golden/name.golden.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeReport(cmd *cobra.Command, format string, report SuiteReport) error {
	out := &OutputFormatter{Format: format, Writer: cmd.OutOrStdout()}
	if report.Failed == 0 {
		return out.Success(report)
	}

	msg := fmt.Sprintf("%d scenario(s) failed", report.Failed)
	var err error
	if format == "json" {
		err = out.Error(CodeTestFailed, msg, report)
	} else {
		err = out.Success(report)
	}
	if err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}
