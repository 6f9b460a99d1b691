package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/drive-summarizer/internal/session"
)

var (
	version = "dev"
	profile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "dsum",
		Short:        "Drive Summarizer - browse Google Drive and summarize documents from the terminal",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&profile, "profile", session.DefaultScope, "session profile, each keeps its own login")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(lsCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
