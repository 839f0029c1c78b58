package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/codyseavey/card-linker/internal/metrics"
	"github.com/codyseavey/card-linker/internal/models"
)

const (
	discordBaseURL        = "https://discord.com/api/v10"
	discordDefaultTimeout = 10 * time.Second
	// discordDefaultRate stays under the global limit of 50 requests/second
	discordDefaultRate  = 40
	discordDefaultBurst = 10
)

// Discord component and interaction constants
const (
	componentActionRow    = 1
	componentButton       = 2
	componentStringSelect = 3

	buttonStylePrimary = 1
	buttonStyleDanger  = 4
	buttonStyleLink    = 5

	callbackDeferredUpdate = 6
	callbackUpdateMessage  = 7
)

// DiscordMessenger implements Messenger over the Discord REST API
type DiscordMessenger struct {
	client  *http.Client
	token   string
	baseURL string
	limiter *rate.Limiter
}

func NewDiscordMessenger(token, baseURL string, perSecond float64) *DiscordMessenger {
	if baseURL == "" {
		baseURL = discordBaseURL
	}
	if perSecond <= 0 {
		perSecond = discordDefaultRate
	}
	return &DiscordMessenger{
		client: &http.Client{
			Timeout: discordDefaultTimeout,
		},
		token:   token,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(perSecond), discordDefaultBurst),
	}
}

type discordComponent struct {
	Type       int                `json:"type"`
	Style      int                `json:"style,omitempty"`
	Label      string             `json:"label,omitempty"`
	CustomID   string             `json:"custom_id,omitempty"`
	URL        string             `json:"url,omitempty"`
	Disabled   bool               `json:"disabled,omitempty"`
	Options    []discordOption    `json:"options,omitempty"`
	Components []discordComponent `json:"components,omitempty"`
}

type discordOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type discordMessageReference struct {
	MessageID string `json:"message_id"`
}

type discordAllowedMentions struct {
	Parse       []string `json:"parse"`
	RepliedUser bool     `json:"replied_user"`
}

type discordMessageBody struct {
	Content          string                   `json:"content"`
	Components       []discordComponent       `json:"components"`
	MessageReference *discordMessageReference `json:"message_reference,omitempty"`
	AllowedMentions  *discordAllowedMentions  `json:"allowed_mentions,omitempty"`
}

type discordInteractionCallback struct {
	Type int                 `json:"type"`
	Data *discordMessageBody `json:"data,omitempty"`
}

// toComponents lays out controls the way the responses expect: link and
// buttons share the first row, the select gets a row of its own
func toComponents(controls []models.Control) []discordComponent {
	var buttons, selects []discordComponent
	for _, c := range controls {
		switch c.Type {
		case models.ControlLink:
			buttons = append(buttons, discordComponent{
				Type:     componentButton,
				Style:    buttonStyleLink,
				Label:    c.Label,
				URL:      c.URL,
				Disabled: c.Disabled,
			})
		case models.ControlButton:
			style := buttonStylePrimary
			if c.Style == models.ButtonDanger {
				style = buttonStyleDanger
			}
			buttons = append(buttons, discordComponent{
				Type:     componentButton,
				Style:    style,
				Label:    c.Label,
				CustomID: c.CustomID,
				Disabled: c.Disabled,
			})
		case models.ControlSelect:
			opts := make([]discordOption, 0, len(c.Options))
			for i, o := range c.Options {
				if i == models.MaxSelectOptions {
					break
				}
				opts = append(opts, discordOption(o))
			}
			selects = append(selects, discordComponent{
				Type:     componentStringSelect,
				CustomID: c.CustomID,
				Options:  opts,
				Disabled: c.Disabled,
			})
		}
	}

	rows := make([]discordComponent, 0, 2)
	if len(buttons) > 0 {
		rows = append(rows, discordComponent{Type: componentActionRow, Components: buttons})
	}
	for _, s := range selects {
		rows = append(rows, discordComponent{Type: componentActionRow, Components: []discordComponent{s}})
	}
	return rows
}

func toMessageBody(msg models.OutboundMessage) *discordMessageBody {
	body := &discordMessageBody{
		Content:    msg.Content,
		Components: toComponents(msg.Controls),
	}
	if body.Components == nil {
		body.Components = []discordComponent{}
	}
	if msg.ReplyTo != 0 {
		body.MessageReference = &discordMessageReference{MessageID: msg.ReplyTo.String()}
		body.AllowedMentions = &discordAllowedMentions{Parse: []string{}, RepliedUser: false}
	}
	return body
}

func (m *DiscordMessenger) SendMessage(ctx context.Context, channelID models.Snowflake, msg models.OutboundMessage) (models.Snowflake, error) {
	var created struct {
		ID models.Snowflake `json:"id"`
	}
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := m.do(ctx, "send", http.MethodPost, path, toMessageBody(msg), &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (m *DiscordMessenger) EditMessage(ctx context.Context, channelID, messageID models.Snowflake, msg models.OutboundMessage) error {
	body := toMessageBody(msg)
	// The reply reference cannot be changed by an edit
	body.MessageReference = nil
	body.AllowedMentions = nil
	path := fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
	return m.do(ctx, "edit", http.MethodPatch, path, body, nil)
}

func (m *DiscordMessenger) DeleteMessage(ctx context.Context, channelID, messageID models.Snowflake) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
	return m.do(ctx, "delete", http.MethodDelete, path, nil, nil)
}

func (m *DiscordMessenger) UpdateInteraction(ctx context.Context, interactionID models.Snowflake, token string, msg *models.OutboundMessage) error {
	callback := discordInteractionCallback{Type: callbackDeferredUpdate}
	if msg != nil {
		body := toMessageBody(*msg)
		body.MessageReference = nil
		body.AllowedMentions = nil
		callback = discordInteractionCallback{Type: callbackUpdateMessage, Data: body}
	}
	path := fmt.Sprintf("/interactions/%s/%s/callback", interactionID, token)
	return m.do(ctx, "interaction", http.MethodPost, path, callback, nil)
}

// do sends one request, retrying once when Discord answers 429
func (m *DiscordMessenger) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
	}

	for attempt := 0; ; attempt++ {
		if err := m.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bot "+m.token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := m.client.Do(req)
		if err != nil {
			metrics.MessengerRequestsTotal.WithLabelValues(op, "error").Inc()
			return fmt.Errorf("discord %s request failed: %w", op, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			wait := retryAfter(resp)
			resp.Body.Close()
			metrics.MessengerRequestsTotal.WithLabelValues(op, "rate_limited").Inc()
			log.Printf("Discord: rate limited on %s, retrying in %v", op, wait)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = decodeDiscordResponse(resp, out)
		resp.Body.Close()
		if err != nil {
			metrics.MessengerRequestsTotal.WithLabelValues(op, "error").Inc()
			return fmt.Errorf("discord %s: %w", op, err)
		}
		metrics.MessengerRequestsTotal.WithLabelValues(op, "ok").Inc()
		return nil
	}
}

func decodeDiscordResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return time.Second
}
