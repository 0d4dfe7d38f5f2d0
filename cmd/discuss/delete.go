package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/helixml/discuss/domain/comment"
)

func deleteCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file> <line>",
		Short: "Delete the comments covering a line",
		Long: `Delete every comment of a file whose range covers the given line.

Signs already placed in a running editor stay until its next highlight_comments.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[1])
			if err != nil {
				return err
			}

			client, err := openClient(*envFile)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			return deleteComments(cmd.Context(), cmd.OutOrStdout(), client.Comments, args[0], line)
		},
	}
}

func parseLine(s string) (int, error) {
	line, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %q is not a number", s)
	}
	if line < 1 {
		return 0, fmt.Errorf("line must be at least 1, got %d", line)
	}
	return line, nil
}

func deleteComments(ctx context.Context, w io.Writer, store comment.Store, file string, line int) error {
	removed, err := store.DeleteContaining(ctx, file, line)
	if err != nil {
		return err
	}
	for _, r := range removed {
		fmt.Fprintf(w, "deleted %d %s:%d-%d\n", r.ID(), r.File(), r.Start(), r.End())
	}
	fmt.Fprintf(w, "%d comment(s) deleted\n", len(removed))
	return nil
}
