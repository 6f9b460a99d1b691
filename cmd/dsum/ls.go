package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
	"github.com/Zuo-Peng/drive-summarizer/internal/render"
)

func lsCmd() *cobra.Command {
	var folder, filter string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List a Drive folder as TSV",
		Long: `List a Drive folder. Output is TSV: id, mimeType, name.

Pairs with fzf:
  dsum ls --folder <id> | fzf --delimiter='\t' --with-nth=3 \
    --bind 'enter:execute(dsum summarize {1} --folder <id>)'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			sess, err := a.requireSession()
			if err != nil {
				return err
			}

			ctx, cancel := a.requestContext(cmd)
			defer cancel()

			roster := drive.NewRoster()
			if err := roster.Refresh(ctx, a.backend, sess.ID, folder); err != nil {
				return a.expire(err)
			}

			files := roster.Filter(filter)
			if len(files) == 0 {
				fmt.Fprintln(os.Stderr, "No files found.")
				return nil
			}

			color := term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Print(render.Listing(files, filter, color))
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "folder id (default: My Drive)")
	cmd.Flags().StringVar(&filter, "filter", "", "case-insensitive name filter")
	return cmd
}
