// Command mcpserver exposes the mock tool providers to MCP clients
// over newline-delimited JSON-RPC on stdio. Logs go to stderr so the
// protocol stream stays clean.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mfinkle/llm-agents/cmd/internal/cli"
	"github.com/mfinkle/llm-agents/mcp"
	"github.com/mfinkle/llm-agents/providers"
	"github.com/mfinkle/llm-agents/tools"
	"github.com/mfinkle/llm-agents/tools/tavily"
	"github.com/spf13/cobra"
)

func main() {
	var debug bool

	cmd := &cobra.Command{
		Use:          "mcpserver",
		Short:        "Serve the mock tool providers over MCP on stdio",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cli.SetupLogs(debug)

			list := []tools.Provider{
				providers.NewUtilityProvider(),
				providers.NewAppointmentProvider(),
				providers.NewProgramProvider(nil),
				providers.NewStoreLocatorProvider(),
			}
			// web search joins the published tools only when the API key is set
			if tavily.Enabled() {
				search, err := tavily.New()
				if err != nil {
					return err
				}
				list = append(list, search)
			}

			srv, err := mcp.NewServer(list...)
			if err != nil {
				return err
			}
			return srv.Serve(context.Background(), os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
