package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sai-sandeep-seelam/CheatStack/internal/markdown"
)

// RenderCmd converts Markdown from a file or stdin to HTML.
func RenderCmd() *cobra.Command {
	var (
		standard bool
		sanitize bool
	)
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render Markdown to HTML with the preview renderer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			src, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			var html string
			if standard {
				html, err = markdown.RenderStandard(string(src))
				if err != nil {
					return err
				}
			} else {
				html = markdown.Render(string(src))
			}
			if sanitize {
				html = markdown.Sanitize(html)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}
	cmd.Flags().BoolVar(&standard, "standard", false, "use the CommonMark/GFM renderer instead of the preview renderer")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "strip active content from the output")
	return cmd
}
