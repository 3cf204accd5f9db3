// Package teams posts MessageCard payloads to Microsoft Teams incoming webhooks.
package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"supplier-portal/internal/config"

	"go.uber.org/zap"
)

const (
	CategoryStock          = "stock"
	CategoryPurchaseOrders = "purchase_orders"
	CategorySync           = "sync"
	CategoryInvoices       = "invoices"
)

type Fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Section struct {
	ActivityTitle string `json:"activityTitle,omitempty"`
	Text          string `json:"text,omitempty"`
	Facts         []Fact `json:"facts,omitempty"`
}

type Card struct {
	Type       string    `json:"@type"`
	Context    string    `json:"@context"`
	Summary    string    `json:"summary"`
	ThemeColor string    `json:"themeColor,omitempty"`
	Title      string    `json:"title"`
	Text       string    `json:"text,omitempty"`
	Sections   []Section `json:"sections,omitempty"`
}

// NewCard builds a MessageCard with a single facts section.
func NewCard(title, text, color string, facts ...Fact) Card {
	c := Card{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		Summary:    title,
		ThemeColor: color,
		Title:      title,
		Text:       text,
	}
	if len(facts) > 0 {
		c.Sections = []Section{{Facts: facts}}
	}
	return c
}

type Notifier interface {
	Post(ctx context.Context, category string, card Card) error
}

type NotifierImpl struct {
	Webhooks   map[string]string
	HttpClient *http.Client
	Logger     *zap.Logger
}

func NewNotifier(cfg *config.Config, logger *zap.Logger) Notifier {
	return &NotifierImpl{
		Webhooks: cfg.Teams.Webhooks,
		HttpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Logger: logger,
	}
}

// Post is a no-op for categories without a configured webhook.
func (n *NotifierImpl) Post(ctx context.Context, category string, card Card) error {
	url := strings.TrimSpace(n.Webhooks[category])
	if url == "" {
		return nil
	}

	body, err := json.Marshal(card)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("teams %s: %w", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("teams %s: status %d: %s", category, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if n.Logger != nil {
		n.Logger.Debug("Teams card posted", zap.String("category", category), zap.String("title", card.Title))
	}
	return nil
}
