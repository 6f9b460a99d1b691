package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, session store and backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Println("=== Config ===")
			if a.cfg.Path != "" {
				fmt.Printf("  File:    %s\n", a.cfg.Path)
			} else {
				fmt.Println("  File:    none (defaults)")
			}
			fmt.Printf("  Backend: %s\n", a.cfg.BackendURL)
			fmt.Printf("  Timeout: %s\n", a.cfg.RequestTimeout.Duration)
			if a.cfg.OAuth.ClientID != "" {
				fmt.Printf("  OAuth:   client configured, redirect http://%s\n", a.cfg.OAuth.ListenAddr)
			} else {
				fmt.Println("  OAuth:   no client_id (use `dsum login --code`)")
			}

			fmt.Println("\n=== Storage ===")
			checkFile("Database", a.cfg.DBPath)
			checkFile("Log", a.cfg.LogPath)

			fmt.Println("\n=== Session ===")
			fmt.Printf("  Profile: %s\n", a.sessions.Scope())
			if scopes, err := a.sessions.Scopes(); err == nil {
				fmt.Printf("  Stored profiles: %d %v\n", len(scopes), scopes)
			}
			sess, loggedIn := a.sessions.Current()
			if loggedIn {
				fmt.Printf("  Status:  logged in since %s\n", sess.CreatedAt.Local().Format(time.DateTime))
			} else {
				fmt.Println("  Status:  not logged in")
			}

			fmt.Println("\n=== Backend ===")
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			if err := a.backend.Ping(ctx); err != nil {
				fmt.Printf("  Reachable: NO (%v)\n", err)
				return nil
			}
			fmt.Println("  Reachable: OK")

			if loggedIn {
				p, err := a.backend.Profile(ctx, sess.ID)
				switch {
				case apperr.IsSessionExpired(err):
					fmt.Println("  Session:   EXPIRED (run `dsum login`)")
				case err != nil:
					fmt.Printf("  Session:   error (%v)\n", err)
				default:
					fmt.Printf("  Session:   OK (%s)\n", p.Email)
				}
			}
			return nil
		},
	}
}

func checkFile(name, path string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	case info.IsDir():
		fmt.Printf("  %s: %s (IS A DIRECTORY)\n", name, path)
	default:
		fmt.Printf("  %s: %s (OK, %.1f KB)\n", name, path, float64(info.Size())/1024)
	}
}
