package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-signup/pkg/auth"
)

func newOTPCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Phone verification codes",
	}

	send := &cobra.Command{
		Use:   "send <phone>",
		Short: "Text a verification code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := opts.client().SendOTP(ctx, auth.FormatPhoneNumber(args[0]))
			if err != nil {
				return fmt.Errorf("failed to send code: %w", err)
			}
			if !res.Accepted {
				return fmt.Errorf("code not sent: %s", res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}

	verify := &cobra.Command{
		Use:   "verify <phone> <code>",
		Short: "Check a verification code and print the phone ticket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := opts.client().VerifyOTP(ctx, auth.FormatPhoneNumber(args[0]), args[1])
			if err != nil {
				return fmt.Errorf("failed to verify code: %w", err)
			}
			if !res.Verified {
				return fmt.Errorf("not verified: %s", res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			fmt.Fprintln(cmd.OutOrStdout(), res.Proof)
			return nil
		},
	}

	cmd.AddCommand(send, verify)
	return cmd
}
