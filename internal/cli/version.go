package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/recordview/pkg/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("recordview %s\n", version.GetVersion())
			cmd.Printf("  commit: %s\n", version.GetCommit())
			cmd.Printf("  built:  %s\n", version.GetBuildDate())
			return nil
		},
	}
}
