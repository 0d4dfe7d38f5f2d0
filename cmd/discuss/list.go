package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helixml/discuss"
	"github.com/helixml/discuss/domain/comment"
	"github.com/helixml/discuss/internal/log"
)

func listCmd(envFile *string) *cobra.Command {
	var (
		match   string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "list [file]",
		Short: "List stored comments",
		Long: `List stored comments as "id file:start-end text", for one file or for all.

--match keeps files whose name matches a doublestar glob such as "**/*.go".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if match != "" && !doublestar.ValidatePattern(match) {
				return fmt.Errorf("invalid --match pattern %q", match)
			}
			if noColor {
				color.NoColor = true
			}

			client, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			var files []string
			if len(args) == 1 {
				files = args
			}
			return listComments(cmd.Context(), cmd.OutOrStdout(), client.Comments, files, match)
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "Only list files matching this glob")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	return cmd
}

// listComments writes every range of files, or of every stored file when
// files is empty, skipping files that do not match pattern.
func listComments(ctx context.Context, w io.Writer, store comment.Store, files []string, pattern string) error {
	if len(files) == 0 {
		all, err := store.Files(ctx)
		if err != nil {
			return err
		}
		files = all
	}

	idColor := color.New(color.FgYellow)
	fileColor := color.New(color.FgCyan)

	for _, file := range files {
		if pattern != "" && !doublestar.MatchUnvalidated(pattern, file) {
			continue
		}
		ranges, err := store.ListRanges(ctx, file)
		if err != nil {
			return err
		}
		for _, r := range ranges {
			fmt.Fprintf(w, "%s %s:%d-%d %s\n",
				idColor.Sprint(r.ID()),
				fileColor.Sprint(r.File()),
				r.Start(), r.End(),
				oneLine(r.Text()),
			)
		}
	}
	return nil
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(s)
}

// openClient opens the store for a one-shot command, logging to stderr.
func openClient(envFile string) (*discuss.Client, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	logger := log.Configure(cfg)

	client, err := discuss.New(
		discuss.WithConfig(cfg),
		discuss.WithLogger(logger.Slog()),
	)
	if err != nil {
		return nil, fmt.Errorf("create discuss client: %w", err)
	}
	return client, nil
}
