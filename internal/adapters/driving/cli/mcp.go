package cli

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
)

var (
	mcpPort            int
	mcpHost            string
	mcpShutdownTimeout time.Duration
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose datasets to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search, ask and ingest_url over MCP",
	Long: `Serve the stored datasets to Model Context Protocol clients.

Tools: search and ask take a dataset id. ingest_url fetches one page into
a dataset. Each dataset is also listed as a resource.

Without --port the server speaks JSON-RPC on stdin and stdout, which is
what desktop assistants launch. With --port it serves streamable HTTP:

  sercha-rag mcp serve
  sercha-rag mcp serve --port 8080 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP bind host")
	mcpServeCmd.Flags().DurationVar(&mcpShutdownTimeout, "shutdown-timeout", mcp.DefaultShutdownTimeout,
		"time allowed for in-flight HTTP requests on exit")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Search:  searchService,
		Answer:  answerService,
		Ingest:  ingestService,
		Dataset: datasetService,
	}, mcp.WithShutdownTimeout(mcpShutdownTimeout))
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
