package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-signup/pkg/auth"
	"github.com/tendant/simple-signup/pkg/signup"
)

const resendCommand = "r"

func newRegisterCmd(opts *options) *cobra.Command {
	var failOnExpiry bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Fill in and submit the signup form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			email, nickname, address := client.Checkers()

			session := signup.NewSession(signup.SessionConfig{
				EmailChecker:    email,
				NicknameChecker: nickname,
				AddressChecker:  address,
				OTPSender:       client,
				OTPVerifier:     client,
				Registrar:       client,
				Validators: signup.Validators{
					Email:    func(v string) error { return auth.ValidateEmail(v, auth.EmailRules{}) },
					Nickname: auth.ValidateNickname,
					Address:  auth.ValidateAddressSlug,
					Phone:    auth.ValidatePhoneNumber,
					Code:     auth.ValidateOTPCode,
				},
				FailOnExpiry: failOnExpiry,
				CallTimeout:  opts.timeout,
				Logger:       opts.logger(cmd.ErrOrStderr()),
			})
			defer session.Close()

			w := &wizard{
				in:      bufio.NewScanner(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
				session: session,
			}
			return w.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&failOnExpiry, "fail-on-expiry", false, "refuse codes once the countdown reaches zero")
	return cmd
}

// wizard prompts for each input in form order.
type wizard struct {
	in      *bufio.Scanner
	out     io.Writer
	session *signup.Session
}

func (w *wizard) ask(prompt string) (string, error) {
	fmt.Fprintf(w.out, "%s: ", prompt)
	if !w.in.Scan() {
		if err := w.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(w.in.Text()), nil
}

func (w *wizard) run(ctx context.Context) error {
	for _, f := range []struct {
		field  *signup.Field
		prompt string
	}{
		{w.session.Email, "Email"},
		{w.session.Nickname, "Nickname"},
	} {
		if err := w.checkField(ctx, f.field, f.prompt); err != nil {
			return err
		}
	}

	var form signup.Form
	var err error
	if form.Password, err = w.ask("Password"); err != nil {
		return err
	}
	if form.PasswordConfirm, err = w.ask("Confirm password"); err != nil {
		return err
	}
	if form.Name, err = w.ask("Name (optional)"); err != nil {
		return err
	}
	if form.BirthYear, err = w.ask("Birth year (optional)"); err != nil {
		return err
	}
	gender, err := w.ask("Gender f/m (optional)")
	if err != nil {
		return err
	}
	form.Gender = parseGender(gender)

	if err := w.verifyPhone(ctx); err != nil {
		return err
	}

	if form.Region, err = w.ask("Region (optional)"); err != nil {
		return err
	}
	if form.District, err = w.ask("District (optional)"); err != nil {
		return err
	}
	if err := w.checkField(ctx, w.session.Address, "Address"); err != nil {
		return err
	}

	readiness, err := w.session.Submit(ctx, form)
	if readiness.Blocked() {
		fmt.Fprintf(w.out, "Cannot sign up: %s\n", readiness.Reason)
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w.out, "Signed up.")
	return nil
}

// checkField asks until the value is available.
func (w *wizard) checkField(ctx context.Context, field *signup.Field, prompt string) error {
	for {
		value, err := w.ask(prompt)
		if err != nil {
			return err
		}
		field.SetValue(value)

		outcome, err := field.Check(ctx)
		switch {
		case errors.Is(err, signup.ErrValidation):
			fmt.Fprintf(w.out, "  invalid %s\n", field.Name())
		case err != nil:
			fmt.Fprintf(w.out, "  check failed: %v\n", err)
		case outcome == signup.OutcomeRejected:
			fmt.Fprintf(w.out, "  %s is not available\n", value)
		default:
			fmt.Fprintf(w.out, "  %s is available\n", value)
			return nil
		}
	}
}

// verifyPhone asks for a number, sends a code and asks for it until the
// number is verified. Typing r resends; an empty line changes the number.
func (w *wizard) verifyPhone(ctx context.Context) error {
	phone := w.session.Phone
	for {
		number, err := w.ask("Phone number")
		if err != nil {
			return err
		}
		phone.SetPhoneNumber(auth.FormatPhoneNumber(number))
		if !w.send(ctx) {
			continue
		}

		for phone.Stage() != signup.StageVerified {
			code, err := w.ask(fmt.Sprintf("Code for %s (%s left, %s to resend)",
				phone.State().PhoneNumber, phone.State().Remaining(), resendCommand))
			if err != nil {
				return err
			}
			if code == "" {
				break
			}
			if code == resendCommand {
				w.send(ctx)
				continue
			}

			outcome, err := phone.VerifyCode(ctx, code)
			switch {
			case errors.Is(err, signup.ErrValidation):
				fmt.Fprintln(w.out, "  the code is six digits")
			case errors.Is(err, signup.ErrCodeExpired):
				fmt.Fprintln(w.out, "  the code expired, resend it")
			case err != nil:
				fmt.Fprintf(w.out, "  verification failed: %v\n", err)
			case outcome == signup.OutcomeRejected:
				fmt.Fprintf(w.out, "  %s\n", phone.State().Message)
			default:
				fmt.Fprintln(w.out, "  phone number verified")
			}
		}
		if phone.Stage() == signup.StageVerified {
			return nil
		}
	}
}

func (w *wizard) send(ctx context.Context) bool {
	phone := w.session.Phone
	outcome, err := phone.SendCode(ctx)
	switch {
	case errors.Is(err, signup.ErrValidation):
		fmt.Fprintln(w.out, "  invalid phone number")
		return false
	case err != nil:
		fmt.Fprintf(w.out, "  could not send a code: %v\n", err)
		return true
	case outcome == signup.OutcomeRejected:
		fmt.Fprintf(w.out, "  %s\n", phone.State().Message)
		return true
	}
	fmt.Fprintf(w.out, "  %s\n", phone.State().Message)
	return true
}

func parseGender(s string) string {
	switch strings.ToLower(s) {
	case "f", "female", "여", "여성":
		return signup.GenderFemale
	case "m", "male", "남", "남성":
		return signup.GenderMale
	}
	return ""
}
