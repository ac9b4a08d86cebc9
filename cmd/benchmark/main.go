// Command benchmark runs the scripted test suite against an agent and
// reports success rates, timings and token usage.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mfinkle/llm-agents/agent"
	"github.com/mfinkle/llm-agents/benchmark"
	"github.com/mfinkle/llm-agents/cmd/internal/cli"
	"github.com/mfinkle/llm-agents/providers"
	"github.com/mfinkle/llm-agents/tools"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configFile string
		provider   string
		model      string
		output     string
		debug      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Benchmark the tool agent against scripted test cases",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.SetupLogs(debug)

			llmModel, err := cli.BuildModel(configFile, provider, model)
			if err != nil {
				return err
			}

			registry := tools.NewRegistry()
			err = registry.Register(
				providers.NewUtilityProvider(),
				providers.NewAppointmentProvider(),
				providers.NewProgramProvider(llmModel),
				providers.NewStoreLocatorProvider(),
			)
			if err != nil {
				return err
			}

			ag := agent.New(llmModel, registry)
			runner := benchmark.NewRunner(ag, llmModel.GetName(), verbose, cmd.OutOrStdout())

			cases := benchmark.DefaultTestCases()
			fmt.Fprintf(cmd.OutOrStdout(), "Running benchmark with %d test cases...\n", len(cases))
			results, sum := runner.Run(context.Background(), cases)

			benchmark.PrintSummary(cmd.OutOrStdout(), results, sum)

			// timestamped filenames keep previous runs around
			base := fmt.Sprintf("%s_%s", output, time.Now().Format("20060102_150405"))
			if err := benchmark.ExportJSON(base+".json", results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Detailed results exported to %s.json\n", base)
			if err := benchmark.ExportCSV(base+".csv", results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Summary results exported to %s.csv\n", base)
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "LLM factory config file")
	cmd.Flags().StringVar(&provider, "provider", "", "provider name (with --config) or type OPENAI|OLLAMA")
	cmd.Flags().StringVar(&model, "model", "", "model name")
	cmd.Flags().StringVarP(&output, "output", "o", "benchmark_results", "base filename for result files")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each test case as it runs")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
