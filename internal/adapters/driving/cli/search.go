package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// snippetRunes bounds the passage preview in table output.
const snippetRunes = 160

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search passages in a dataset",
	Long: `Returns the passages of the dataset closest to the query by cosine
similarity of their embeddings.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchResultJSON is the JSON shape of one result.
type searchResultJSON struct {
	DocumentKey string  `json:"doc_id"`
	Source      string  `json:"source"`
	Ordinal     int     `json:"idx"`
	Score       float64 `json:"score"`
	Text        string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}
	coll, err := collection()
	if err != nil {
		return err
	}

	results, err := searchService.Search(cmd.Context(), coll, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		out[i] = searchResultJSON{
			DocumentKey: results[i].Metadata.DocumentKey,
			Source:      results[i].Metadata.Source,
			Ordinal:     results[i].Metadata.Ordinal,
			Score:       results[i].Score,
			Text:        results[i].Text,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Source #ordinal (Score)
		label := results[i].Metadata.Source
		if label == "" {
			label = results[i].Metadata.DocumentKey
		}

		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, label, results[i].Metadata.Ordinal, results[i].Score)
		if s := snippet(results[i].Text); s != "" {
			cmd.Printf("      %s\n", s)
		}
		cmd.Println()
	}

	return nil
}

// snippet flattens whitespace and truncates text to snippetRunes.
func snippet(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	r := []rune(flat)
	if len(r) <= snippetRunes {
		return flat
	}
	return string(r[:snippetRunes]) + "..."
}
