package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear [path]",
	Short: "Drop the stored index of a project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}

	s, err := openSession(path, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.service.Forget(path); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	fmt.Printf("Index of %s cleared\n", path)
	return nil
}
