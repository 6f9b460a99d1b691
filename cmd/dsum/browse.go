package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/drive-summarizer/internal/summary"
	"github.com/Zuo-Peng/drive-summarizer/internal/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "browse",
		Aliases: []string{"b"},
		Short:   "Interactive Drive browser with summaries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			timeout := a.cfg.RequestTimeout.Duration
			coord := summary.NewCoordinator(summary.NewCache(summary.DefaultCapacity), a.backend,
				summary.WithTimeout(timeout))

			return tui.Run(tui.Deps{
				Sessions:  a.sessions,
				Files:     a.backend,
				Profiles:  a.backend,
				Summaries: coord,
				Timeout:   timeout,
			})
		},
	}
}
