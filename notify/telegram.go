// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Telegram sends messages through the Telegram Bot API. The recipient
// ref is the chat ID.
type Telegram struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) TelegramOption {
	return func(t *Telegram) {
		t.baseURL = url
	}
}

// NewTelegram creates a Telegram notifier with the given bot token.
func NewTelegram(token string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		token:   token,
		baseURL: defaultTelegramAPI,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default().With("component", "telegram-notifier"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Notify sends message to the chat identified by ref.
func (t *Telegram) Notify(ctx context.Context, ref, message string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: ref, Text: message})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("telegram response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram send failed: %s", result.Description)
	}

	t.logger.Debug("notification sent", "chat_id", ref)
	return nil
}
