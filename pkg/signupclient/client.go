// Package signupclient talks to the signup HTTP API and implements the
// collaborator interfaces of pkg/signup.
package signupclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tendant/simple-signup/pkg/api"
	"github.com/tendant/simple-signup/pkg/signup"
)

// ErrInvalidInput is wrapped by APIError for 4xx answers.
var ErrInvalidInput = errors.New("request rejected by server")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("signup server returned status %d", e.Status)
	}
	return fmt.Sprintf("signup server returned status %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput on client errors.
func (e *APIError) Unwrap() error {
	if e.Status >= 400 && e.Status < 500 {
		return ErrInvalidInput
	}
	return nil
}

// Client calls a signup server.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckEmail reports whether email is free.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	return c.check(ctx, api.PathCheckEmail, email)
}

// CheckNickname reports whether nickname is free.
func (c *Client) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	return c.check(ctx, api.PathCheckNickname, nickname)
}

// CheckAddress reports whether the address slug is free.
func (c *Client) CheckAddress(ctx context.Context, slug string) (bool, error) {
	return c.check(ctx, api.PathCheckAddress, slug)
}

func (c *Client) check(ctx context.Context, path, value string) (bool, error) {
	var resp api.CheckResponse
	if err := c.post(ctx, path, api.CheckRequest{Value: value}, &resp); err != nil {
		return false, err
	}
	return resp.IsAvailable, nil
}

// SendOTP asks the server to text a code. Throttled or refused sends come
// back as Accepted=false with the server's message.
func (c *Client) SendOTP(ctx context.Context, phoneNumber string) (signup.SendResult, error) {
	var resp api.SendOTPResponse
	if err := c.post(ctx, api.PathSendOTP, api.SendOTPRequest{PhoneNumber: phoneNumber}, &resp); err != nil {
		return signup.SendResult{}, err
	}
	return signup.SendResult{Accepted: resp.Accepted, Message: resp.Message}, nil
}

// VerifyOTP checks a code. The returned Proof is the phone ticket.
func (c *Client) VerifyOTP(ctx context.Context, phoneNumber, code string) (signup.VerifyResult, error) {
	var resp api.VerifyOTPResponse
	req := api.VerifyOTPRequest{PhoneNumber: phoneNumber, Code: code}
	if err := c.post(ctx, api.PathVerifyOTP, req, &resp); err != nil {
		return signup.VerifyResult{}, err
	}
	return signup.VerifyResult{Verified: resp.Verified, Message: resp.Message, Proof: resp.Ticket}, nil
}

// Register submits the completed form.
func (c *Client) Register(ctx context.Context, s signup.Submission) error {
	_, err := c.CreateAccount(ctx, s)
	return err
}

// CreateAccount submits the completed form and returns the created account.
func (c *Client) CreateAccount(ctx context.Context, s signup.Submission) (*api.RegisterResponse, error) {
	req := api.RegisterRequest{
		Email:           s.Email,
		Password:        s.Form.Password,
		PasswordConfirm: s.Form.PasswordConfirm,
		Nickname:        s.Nickname,
		Name:            s.Form.Name,
		BirthYear:       s.Form.BirthYear,
		Gender:          s.Form.Gender,
		PhoneNumber:     s.PhoneNumber,
		PhoneTicket:     s.PhoneProof,
		Region:          s.Form.Region,
		District:        s.Form.District,
		AddressSlug:     s.AddressSlug,
	}
	var resp api.RegisterResponse
	if err := c.post(ctx, api.PathRegister, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health returns nil when the server reports healthy.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+api.PathHealth, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(httpReq, nil)
}

// Checkers returns the three availability checkers for a signup.Session.
func (c *Client) Checkers() (email, nickname, address signup.AvailabilityChecker) {
	return signup.AvailabilityFunc(c.CheckEmail),
		signup.AvailabilityFunc(c.CheckNickname),
		signup.AvailabilityFunc(c.CheckAddress)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("signup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body api.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
