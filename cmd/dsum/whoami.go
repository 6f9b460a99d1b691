package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in Google account",
		Args:  cobra.NoArgs,
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
			p, err := a.backend.Profile(ctx, sess.ID)
			if err != nil {
				return a.expire(err)
			}

			if p.Email != "" {
				fmt.Printf("%s <%s>\n", p.Name, p.Email)
			} else {
				fmt.Println(p.Name)
			}
			return nil
		},
	}
}
