package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mabhi256/objexplorer/internal/layout"
	"github.com/mabhi256/objexplorer/utils"
)

var layoutFile string

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the runtime structure layout as YAML",
	Long: `Layout prints the offsets used to read object headers, type descriptors, field
tables, container entities, components and managed strings.

Without --file the built-in defaults are printed; redirect them to a file and
edit it to describe a different runtime build. With --file the file is
validated and the effective layout (defaults plus overrides) is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := layout.Load(layoutFile)
		if err != nil {
			return err
		}

		out, err := l.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode layout: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().StringVarP(&layoutFile, "file", "f", "", "Layout file to validate and print")
	layoutCmd.RegisterFlagCompletionFunc("file", utils.CompleteFilesByExtension(".yaml", ".yml"))
}
