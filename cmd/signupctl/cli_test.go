package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tendant/simple-signup/signupsvc"
)

var codeRegex = regexp.MustCompile(`\[(\d{6})\]`)

type inbox struct {
	mu   sync.Mutex
	last string
}

func (i *inbox) SendSMS(_ context.Context, _, text string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.last = text
	return nil
}

func (i *inbox) code() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if m := codeRegex.FindStringSubmatch(i.last); m != nil {
		return m[1]
	}
	return ""
}

func startServer(t *testing.T) (string, *inbox) {
	t.Helper()
	sms := &inbox{}
	svc, err := signupsvc.New(signupsvc.Config{
		TicketSecret: "0123456789abcdef0123456789abcdef",
		SMS:          sms,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(svc.Router())
	t.Cleanup(srv.Close)
	return srv.URL, sms
}

func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if stdin != nil {
		root.SetIn(stdin)
	}
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	url, _ := startServer(t)

	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{args: []string{"check", "email", "a@b.com"}, want: "a@b.com is available"},
		{args: []string{"check", "nickname", "admin"}, want: "admin is not available"},
		{args: []string{"check", "address", "my-shop"}, want: "my-shop is available"},
		{args: []string{"check", "address", "Bad Slug"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, nil, append([]string{"--server", url}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want containing %q", out, tt.want)
			}
		})
	}
}

func TestOTPCommands(t *testing.T) {
	url, sms := startServer(t)

	out, err := execute(t, nil, "-s", url, "otp", "send", "01012345678")
	if err != nil {
		t.Fatalf("otp send error = %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Error("otp send printed nothing")
	}

	if _, err := execute(t, nil, "-s", url, "otp", "verify", "010-1234-5678", "12345"); err == nil {
		t.Error("otp verify with a short code: error = nil, want error")
	}

	out, err = execute(t, nil, "-s", url, "otp", "verify", "010-1234-5678", sms.code())
	if err != nil {
		t.Fatalf("otp verify error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if got := strings.Count(lines[len(lines)-1], "."); got != 2 {
		t.Errorf("ticket %q has %d dots, want a JWT", lines[len(lines)-1], got)
	}
}

func TestRegisterCommand(t *testing.T) {
	url, sms := startServer(t)
	pr, pw := io.Pipe()

	go func() {
		defer pw.Close()
		for _, line := range []string{
			"admin", // not an e-mail, asked again
			"a@b.com",
			"abc",
			"secret123",
			"secret123",
			"홍길동",
			"1994",
			"f",
			"01012345678",
		} {
			fmt.Fprintln(pw, line)
		}

		deadline := time.Now().Add(2 * time.Second)
		for sms.code() == "" && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		for _, line := range []string{
			sms.code(),
			"서울특별시",
			"강남구",
			"my-shop",
		} {
			fmt.Fprintln(pw, line)
		}
	}()

	out, err := execute(t, pr, "-s", url, "register")
	pr.Close()
	if err != nil {
		t.Fatalf("register error = %v\n%s", err, out)
	}
	for _, want := range []string{"invalid email", "phone number verified", "Signed up."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRegisterCommand_InputEnds(t *testing.T) {
	url, _ := startServer(t)
	pr, pw := io.Pipe()

	go func() {
		defer pw.Close()
		for _, line := range []string{"a@b.com", "abc", "secret123", "other123"} {
			fmt.Fprintln(pw, line)
		}
	}()

	_, err := execute(t, pr, "-s", url, "register")
	pr.Close()
	if err == nil {
		t.Fatal("register error = nil, want an error when input ends early")
	}
}

func TestParseGender(t *testing.T) {
	tests := map[string]string{"f": "female", "M": "male", "여성": "female", "": "", "x": ""}
	for in, want := range tests {
		if got := parseGender(in); got != want {
			t.Errorf("parseGender(%q) = %q, want %q", in, got, want)
		}
	}
}
