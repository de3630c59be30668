// Command signupctl drives the signup API from a terminal.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-signup/pkg/signupclient"
)

type options struct {
	server  string
	timeout time.Duration
	verbose bool
}

func (o *options) client() *signupclient.Client {
	return signupclient.New(o.server)
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "signupctl",
		Short: "Member signup client",
		Long: `Talk to a signup server.

Subcommands:
  check     - Check whether an email, nickname or address is free
  otp       - Send or verify a phone verification code
  register  - Walk through the whole signup form interactively`,
		SilenceUsage: true,
	}

	server := os.Getenv("SIGNUP_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	root.PersistentFlags().StringVarP(&opts.server, "server", "s", server, "signup server base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout per request")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log collaborator calls")

	root.AddCommand(newCheckCmd(opts), newOTPCmd(opts), newRegisterCmd(opts))
	return root
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
