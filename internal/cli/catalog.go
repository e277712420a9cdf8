package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sai-sandeep-seelam/CheatStack/internal/cms"
	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
	"github.com/sai-sandeep-seelam/CheatStack/internal/services"
)

// SearchCmd prints the cheatsheets matching a query.
func SearchCmd(opts *rootOptions) *cobra.Command {
	var sortKey string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := domain.ParseSortKey(sortKey)
			if !ok {
				return fmt.Errorf("unknown sort %q (want relevance, popularity or newest)", sortKey)
			}
			rt, err := opts.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			results := rt.catalog.Search(cmd.Context(), args[0])
			return writeSummaries(cmd.OutOrStdout(), services.ApplySort(results, key))
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", string(domain.SortRelevance), "result order: relevance, popularity or newest")
	return cmd
}

// ShowCmd prints one cheatsheet's HTML fragment, or its sections as plain text with --text.
func ShowCmd(opts *rootOptions) *cobra.Command {
	var asText bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a cheatsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := cms.ToSlug(args[0])
			if name == "" {
				return errors.New("cheatsheet name is required")
			}
			rt, err := opts.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			detail := rt.catalog.GetDetail(cmd.Context(), name)
			out := cmd.OutOrStdout()
			if asText {
				return writeDetail(out, detail)
			}
			_, err = fmt.Fprintln(out, detail.HTML)
			return err
		},
	}
	cmd.Flags().BoolVar(&asText, "text", false, "print sections as plain text instead of HTML")
	return cmd
}

func (o *rootOptions) runtime(ctx context.Context) (*runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(ctx, o.envFile, o.logger, o.configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return buildRuntime(ctx, cfg, o.logger, false)
}

func writeSummaries(w io.Writer, list []domain.CheatsheetSummary) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "no cheatsheets found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tCATEGORY\tPOPULARITY")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Name, s.DisplayName, s.Category, s.Popularity)
	}
	return tw.Flush()
}

func writeDetail(w io.Writer, detail domain.CheatsheetDetail) error {
	var b strings.Builder
	b.WriteString(detail.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(detail.Title)))
	b.WriteString("\n")
	for _, section := range detail.Sections {
		b.WriteString("\n")
		b.WriteString(section.Title)
		b.WriteString("\n")
		for _, item := range section.Items {
			b.WriteString("  ")
			b.WriteString(item.Code)
			if item.Description != "" {
				b.WriteString("\n      ")
				b.WriteString(item.Description)
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
