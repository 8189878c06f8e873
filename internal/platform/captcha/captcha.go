// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package captcha verifies client-side CAPTCHA tokens with Google reCAPTCHA.

The core treats verification as a black box: a token either verifies or it
does not. Transport failures, timeouts and malformed answers all read as
"not verified"; nothing is retried or cached.
*/
package captcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is Google's siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

const requestTimeout = 5 * time.Second

// Recaptcha verifies tokens against the siteverify API.
type Recaptcha struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

// NewRecaptcha creates a verifier. A nil client gets a client with a short timeout.
func NewRecaptcha(secret, verifyURL string, client *http.Client, logger *slog.Logger) *Recaptcha {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Recaptcha{secret: secret, verifyURL: verifyURL, client: client, logger: logger}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether token was issued to a human on this site.
func (verifier *Recaptcha) Verify(ctx context.Context, token, remoteIP string) bool {
	if token == "" {
		return false
	}

	form := url.Values{}
	form.Set("secret", verifier.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, verifier.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		verifier.logger.WarnContext(ctx, "recaptcha_request_build_failed", slog.Any("error", err))
		return false
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := verifier.client.Do(request)
	if err != nil {
		verifier.logger.WarnContext(ctx, "recaptcha_unreachable", slog.Any("error", err))
		return false
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		verifier.logger.WarnContext(ctx, "recaptcha_bad_status", slog.Int("status", response.StatusCode))
		return false
	}

	var answer siteVerifyResponse
	if err := json.NewDecoder(response.Body).Decode(&answer); err != nil {
		verifier.logger.WarnContext(ctx, "recaptcha_bad_response", slog.Any("error", err))
		return false
	}

	if !answer.Success {
		verifier.logger.DebugContext(ctx, "recaptcha_rejected", slog.Any("error_codes", answer.ErrorCodes))
	}
	return answer.Success
}

// Disabled accepts every token. It exists for local development only; the
// configuration layer refuses it in production.
type Disabled struct{}

// Verify always reports true.
func (Disabled) Verify(context.Context, string, string) bool {
	return true
}
