package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biofert/core/internal/adapters/repository"
	"github.com/biofert/core/internal/infrastructure/logger"
)

// NewContentCommand creates the content maintenance command
func NewContentCommand() *cobra.Command {
	contentCmd := &cobra.Command{
		Use:   "content",
		Short: "Content file commands",
	}

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check the content file against the section schemas",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if len(args) == 1 {
				path = args[0]
			}
			return validateContent(cmd, path)
		},
	}
	validateCmd.Flags().String("file", "data/content.json", "Content file to check")
	contentCmd.AddCommand(validateCmd)

	return contentCmd
}

func validateContent(cmd *cobra.Command, path string) error {
	store := repository.NewContentStore(path, logger.NewNop())
	if err := store.Load(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Cannot load %s: %v\n", path, err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	issues := store.Validate()
	if len(issues) == 0 {
		fmt.Fprintf(out, "%s: OK\n", path)
		return nil
	}

	fmt.Fprintf(out, "%s: %d issue(s)\n", path, len(issues))
	for _, issue := range issues {
		fmt.Fprintf(out, "  - %s\n", issue)
	}
	return nil
}
