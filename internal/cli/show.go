package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagscope/internal/adapter/analyzer"
	"tagscope/internal/usecase"
)

var (
	showJSON  bool
	showFiles bool
)

var showCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Summarize the stored index of a project",
	Long: `Summarize the snapshot stored by the last build of a project.

Examples:
  tagscope show .            # Counts and warnings
  tagscope show . --files    # One line per indexed file
  tagscope show . --json     # The produced index as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the produced index as JSON")
	showCmd.Flags().BoolVar(&showFiles, "files", false, "list indexed files")
}

func runShow(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}

	s, err := openSession(path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	idx, err := s.service.Restore(path)
	if err != nil {
		return fmt.Errorf("no index found, run 'tagscope build' first: %w", err)
	}

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(usecase.ExportIndex(idx))
	}

	printSummary(idx)
	fmt.Printf("\nBuilt at: %s\n", idx.BuiltAt.Format("2006-01-02 15:04:05"))
	if idx.TagsPath != "" {
		fmt.Printf("Listing:  %s\n", idx.TagsPath)
	}

	if showFiles {
		fmt.Printf("\nFiles:\n")
		for i, fa := range idx.Analyses {
			fmt.Printf("  %3d  %s (%s)\n", i, idx.Files[i], analyzer.Describe(fa))
		}
	}
	return nil
}
