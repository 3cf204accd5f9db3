package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type SendGridSender struct {
	APIKey     string
	URL        string
	HttpClient *http.Client
}

func NewSendGridSender(apiKey, url string) *SendGridSender {
	return &SendGridSender{
		APIKey:     apiKey,
		URL:        url,
		HttpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SendGridSender) Name() string { return "sendgrid" }

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPayload struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress `json:"from"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	var payload sendGridPayload
	payload.Personalizations = make([]struct {
		To []sendGridAddress `json:"to"`
	}, 1)
	for _, to := range msg.To {
		payload.Personalizations[0].To = append(payload.Personalizations[0].To, sendGridAddress{Email: to})
	}
	payload.From = sendGridAddress{Email: msg.From}
	payload.Subject = msg.Subject
	payload.Content = append(payload.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/html", Value: msg.HTMLBody})

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HttpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
