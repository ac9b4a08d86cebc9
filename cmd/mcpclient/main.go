// Command mcpclient launches a configured MCP server, imports its
// tools and chats with them through the agent.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mfinkle/llm-agents/agent"
	"github.com/mfinkle/llm-agents/cmd/internal/cli"
	"github.com/mfinkle/llm-agents/mcp"
	"github.com/mfinkle/llm-agents/tools"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configFile    string
		serverName    string
		llmConfigFile string
		provider      string
		model         string
		debug         bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:          "mcpclient",
		Short:        "Chat with tools served by an MCP server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.SetupLogs(debug)
			ctx := context.Background()

			cfg, err := mcp.LoadConfig(configFile)
			if err != nil {
				return err
			}
			srvCfg, err := cfg.Server(serverName)
			if err != nil {
				return err
			}

			process, err := mcp.StartServer(ctx, srvCfg.Command, srvCfg.Args, srvCfg.Env)
			if err != nil {
				return err
			}
			defer func() {
				_ = process.Stop()
			}()

			client := mcp.NewClient(process.Stdout(), process.Stdin())
			defer client.Close()

			remote, err := mcp.NewRemoteProvider(ctx, serverName, client)
			if err != nil {
				return err
			}

			registry := tools.NewRegistry()
			if err := registry.Register(remote); err != nil {
				return err
			}

			llmModel, err := cli.BuildModel(llmConfigFile, provider, model)
			if err != nil {
				return err
			}

			var opts []agent.Option
			if verbose {
				opts = append(opts, agent.WithCallback(&agent.PrinterCallback{Out: cmd.OutOrStdout()}))
			}
			ag := agent.New(llmModel, registry, opts...)

			err = cli.RunREPL(ctx, ag, cmd.InOrStdin(), cmd.OutOrStdout())
			if shutdownErr := client.Shutdown(ctx); shutdownErr != nil && err == nil {
				err = shutdownErr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "mcp_servers.yaml", "MCP server config file")
	cmd.Flags().StringVar(&serverName, "server", "tools", "server name from the config")
	cmd.Flags().StringVar(&llmConfigFile, "llm-config", "", "LLM factory config file")
	cmd.Flags().StringVar(&provider, "provider", "", "provider name (with --llm-config) or type OPENAI|OLLAMA")
	cmd.Flags().StringVar(&model, "model", "", "model name")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print tool calls and model responses")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
