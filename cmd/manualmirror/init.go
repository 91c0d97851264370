package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/seeds.yaml
var seedTemplate embed.FS

// seedFileName is the default seed list file name.
const seedFileName = "seeds.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new seed list file",
		Long: `Init creates a seeds.yaml file in the current directory, pre-filled
with the portal's manual chapters.

The generated file includes:
- One seed per user-manual and technical-manual chapter
- A category label per seed, used for filename prefixes and reporting

Edit the file to add or remove chapters before running the mirror.

Examples:
  # Create seeds.yaml in the current directory
  manualmirror init

  # Create the seed file at a specific path
  manualmirror init -o config/seeds.yaml

  # Force overwrite an existing file
  manualmirror init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", seedFileName,
		"Output file path for the seed list")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing seed file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("seed file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := seedTemplate.ReadFile("templates/seeds.yaml")
	if err != nil {
		return fmt.Errorf("failed to read seed template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created seed file: %s\n", outputPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  - Review the chapter list and remove what you do not need")
	fmt.Fprintln(out, "  - Export MANUALMIRROR_USERNAME and MANUALMIRROR_PASSWORD")
	fmt.Fprintf(out, "  - Run: manualmirror mirror --seeds %s --output ./manuals\n", outputPath)

	return nil
}
