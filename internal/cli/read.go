package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <path> <index>",
	Short: "Print a file of the stored index by position",
	Long: `Print the file at the given position of the indexed file list.
Positions are the ones listed by 'tagscope show --files'.

Examples:
  tagscope read . 0`,
	Args: cobra.ExactArgs(2),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args[:1])
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid file index %q: %w", args[1], err)
	}

	s, err := openSession(path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.service.Restore(path); err != nil {
		return fmt.Errorf("no index found, run 'tagscope build' first: %w", err)
	}

	text, err := s.service.ReadFile(index)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
