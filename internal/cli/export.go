package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the stored document as JSON to stdout",
		Long: `Write the stored document as JSON to stdout. Unlike the other commands,
export fails when the store cannot be read instead of showing an empty
document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				doc, err := a.docs.Export(cmd.Context())
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out.Writer)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(doc)
			})
		},
	}
}
