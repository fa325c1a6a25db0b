package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// snippetLength is the number of characters of a passage shown per result.
const snippetLength = 240

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the library",
	Long: `Embeds the query and returns the nearest passages in the library,
each with a citation of the form "Authors(Date) Source. Pgs. N".`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	rt, err := openRuntime(cmd.Context(), func(s *domain.AppSettings) {
		if searchLimit > 0 {
			s.Retrieval.Limit = searchLimit
		}
	})
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	results := rt.Retrieval.Query(cmd.Context(), query)

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.CitedResult) error {
	if results == nil {
		results = []domain.CitedResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.CitedResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Citation (distance)
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, results[i].Citation, results[i].Record.Distance)
		if s := snippet(results[i].Record.Contents, snippetLength); s != "" {
			cmd.Printf("      %s\n", s)
		}
		cmd.Println()
	}

	return nil
}

// snippet flattens whitespace and truncates to at most n runes.
func snippet(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}
