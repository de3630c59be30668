package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-signup/pkg/signupclient"
)

type checkFunc func(c *signupclient.Client, ctx context.Context, value string) (bool, error)

func newCheckCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a value is free",
	}

	kinds := []struct {
		use   string
		short string
		check checkFunc
	}{
		{"email <address>", "Check an email address", (*signupclient.Client).CheckEmail},
		{"nickname <name>", "Check a nickname", (*signupclient.Client).CheckNickname},
		{"address <slug>", "Check a public address slug", (*signupclient.Client).CheckAddress},
	}

	for _, k := range kinds {
		cmd.AddCommand(&cobra.Command{
			Use:   k.use,
			Short: k.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
				defer cancel()

				ok, err := k.check(opts.client(), ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to check %s: %w", cmd.Name(), err)
				}
				if ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is available\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not available\n", args[0])
				}
				return nil
			},
		})
	}
	return cmd
}
