// Command toolagent runs an interactive chat with the tool-calling
// agent over the built-in providers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mfinkle/llm-agents/agent"
	"github.com/mfinkle/llm-agents/cmd/internal/cli"
	"github.com/mfinkle/llm-agents/providers"
	"github.com/mfinkle/llm-agents/tools"
	"github.com/mfinkle/llm-agents/tools/tavily"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configFile string
		provider   string
		model      string
		debug      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "toolagent",
		Short:        "Interactive chat agent with mock tool providers",
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
			// web search joins the catalog only when the API key is set
			if tavily.Enabled() {
				search, err := tavily.New()
				if err != nil {
					return err
				}
				if err := registry.Register(search); err != nil {
					return err
				}
			}

			var opts []agent.Option
			if verbose {
				opts = append(opts, agent.WithCallback(&agent.PrinterCallback{Out: cmd.OutOrStdout()}))
			}
			ag := agent.New(llmModel, registry, opts...)

			return cli.RunREPL(context.Background(), ag, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "LLM factory config file")
	cmd.Flags().StringVar(&provider, "provider", "", "provider name (with --config) or type OPENAI|OLLAMA")
	cmd.Flags().StringVar(&model, "model", "", "model name")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print tool calls and model responses")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
