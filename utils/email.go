package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"go.uber.org/zap"

	config "github.com/phillip/chapter-directory-go/config"
)

var ErrEmailNotConfigured = errors.New("missing required email config")

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

var emailClient = &http.Client{Timeout: 15 * time.Second}

// SendEmail sends an HTML email using the ZeptoMail HTTP API.
func SendEmail(ctx context.Context, cfg *config.Config, to, name, subject, body string) error {
	log := cfg.Logger.With(zap.String("to", to), zap.String("subject", subject))

	if cfg.EmailAPIURL == "" || cfg.EmailAPIKey == "" || cfg.EmailFrom == "" {
		log.Warn("email skipped: ZEPTO_API_URL, ZEPTO_API_KEY or EMAIL_FROM not set")
		return ErrEmailNotConfigured
	}

	payload := emailRequest{
		From:     emailAddress{Address: cfg.EmailFrom},
		To:       []toRecipient{{Email: emailWithName{Address: to, Name: name}}},
		Subject:  subject,
		HtmlBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.EmailAPIURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", cfg.EmailAPIKey)

	resp, err := emailClient.Do(req)
	if err != nil {
		log.Error("email send failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		log.Error("zeptomail rejected email", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	log.Info("email sent")
	return nil
}

func WelcomeEmail(firstName string) (subject, body string) {
	subject = "Welcome to the chapter directory"
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p>Your member account is ready. Complete your business profile so chapter members can find you.</p>",
		html.EscapeString(firstName),
	)
	return subject, body
}
