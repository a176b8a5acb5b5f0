package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BrevoClient delivers notifications as transactional emails via the Brevo API.
// Env: BREVO_API_KEY, MAIL_FROM. Empty API key makes every send a no-op.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@fracton.io"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Fracton"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

func (c *BrevoClient) NotifyKycChanged(ctx context.Context, toEmail, fullname, status string) error {
	content := fmt.Sprintf(`
    <h1>KYC Status Updated</h1>
    <p>Hi %s,</p>
    <p>Your identity verification status is now <strong>%s</strong>.</p>
    <p>Approved accounts can mint allocations and trade fractional asset tokens on Fracton.</p>
`, EscapeHTML(fullname), EscapeHTML(status))
	return c.send(ctx, toEmail, "Your Fracton KYC status changed", EmailLayout(content))
}

func (c *BrevoClient) NotifyAccountFrozen(ctx context.Context, toEmail, fullname string, frozen bool) error {
	state, subject := "frozen", "Your Fracton account has been frozen"
	if !frozen {
		state, subject = "unfrozen", "Your Fracton account has been unfrozen"
	}
	content := fmt.Sprintf(`
    <h1>Account %s</h1>
    <p>Hi %s,</p>
    <p>A compliance action has %s your account. While frozen, no trading actions are possible.</p>
    <p>If you believe this is a mistake, contact support.</p>
`, EscapeHTML(state), EscapeHTML(fullname), EscapeHTML(state))
	return c.send(ctx, toEmail, subject, EmailLayout(content))
}

func (c *BrevoClient) NotifyTokensRevoked(ctx context.Context, toEmail, assetTitle string, amount int64) error {
	content := fmt.Sprintf(`
    <h1>Tokens Revoked</h1>
    <p>An administrator revoked <strong>%d</strong> tokens of <strong>%s</strong> from your balance.</p>
    <p>The revoked amount has been returned to the asset's unallocated supply. This action is recorded in your transfer history.</p>
`, amount, EscapeHTML(assetTitle))
	return c.send(ctx, toEmail, "Tokens revoked from your Fracton balance", EmailLayout(content))
}

func (c *BrevoClient) NotifyOrderFilled(ctx context.Context, toEmail, assetTitle string, amount int64, price string) error {
	content := fmt.Sprintf(`
    <h1>Order Filled</h1>
    <p>Your order for <strong>%d</strong> tokens of <strong>%s</strong> at <strong>%s</strong> per token has been filled.</p>
    <p>The trade is settled and visible in your transfer history.</p>
`, amount, EscapeHTML(assetTitle), EscapeHTML(price))
	return c.send(ctx, toEmail, "Your Fracton order was filled", EmailLayout(content))
}
