package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGenerateAssetsCommand creates the generate-assets command. Procedural
// planet image generation is an external collaborator this core doesn't
// own; this stub validates its output path argument and says so rather
// than faking an image pipeline.
func NewGenerateAssetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-assets <path>",
		Short: "Report where procedural planet assets would be generated",
		Long: `generate-assets validates an output path for procedurally generated
planet imagery. Actually rendering those images is an external
collaborator's responsibility, not this core's; this command exists so
operators have a stable CLI surface to point at once that collaborator is
wired up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if path == "" {
				return fmt.Errorf("output path must not be empty")
			}
			fmt.Printf("planet asset generation for %s is handled by an external collaborator; nothing to do here\n", path)
			return nil
		},
	}
}
