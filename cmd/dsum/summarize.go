package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
	"github.com/Zuo-Peng/drive-summarizer/internal/render"
	"github.com/Zuo-Peng/drive-summarizer/internal/summary"
)

func summarizeCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "summarize <fileId>",
		Short: "Summarize one file of a folder",
		Long: `Summarize a file. The file is looked up in the listing of --folder
(default: My Drive) to learn its name and type.`,
		Args: cobra.ExactArgs(1),
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

			var file *drive.FileEntry
			files := roster.Files()
			for i := range files {
				if files[i].ID == args[0] {
					file = &files[i]
					break
				}
			}
			if file == nil {
				return fmt.Errorf("file %s not found in folder", args[0])
			}

			coord := summary.NewCoordinator(summary.NewCache(summary.DefaultCapacity), a.backend,
				summary.WithTimeout(a.cfg.RequestTimeout.Duration))
			res, err := coord.Summarize(ctx, sess.ID, file)
			if err != nil {
				if errors.Is(err, summary.ErrNotSummarizable) {
					return fmt.Errorf("%s (%s) cannot be summarized", file.Name, file.MimeType)
				}
				return a.expire(err)
			}

			fd := int(os.Stdout.Fd())
			if !term.IsTerminal(fd) {
				fmt.Println(res.Text)
				return nil
			}
			width := 80
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				width = w
			}
			fmt.Println(render.Markdown(res.Text, width))
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "folder id containing the file (default: My Drive)")
	return cmd
}
