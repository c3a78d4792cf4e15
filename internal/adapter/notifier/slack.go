package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hive-corporation/keyguard/internal/adapter/httpclient"
	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/ports"
)

const (
	DefaultSlackAPIURL = "https://slack.com/api/chat.postMessage"
	maxSlackFindings   = 5
)

type SlackNotifier struct {
	botToken    string
	channel     string
	mentionTeam string
	apiURL      string
	httpClient  httpclient.Doer
}

// NewSlackNotifier posts through client, which is usually a
// httpclient.ResilientClient. An empty apiURL selects the public Slack API.
func NewSlackNotifier(client httpclient.Doer, botToken, channel, mentionTeam, apiURL string) *SlackNotifier {
	if apiURL == "" {
		apiURL = DefaultSlackAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SlackNotifier{
		botToken:    botToken,
		channel:     channel,
		mentionTeam: mentionTeam,
		apiURL:      apiURL,
		httpClient:  client,
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

// Notify sends the incident as a Block Kit message.
func (s *SlackNotifier) Notify(ctx context.Context, n ports.Notification) error {
	outcome := n.Outcome

	payload := SlackMessage{
		Channel: s.channel,
		Blocks:  s.buildIncidentBlocks(outcome),
		Text:    fmt.Sprintf("🔑 %s: %s", n.Subject, outcome.AccessKeyID),
	}

	return s.sendMessage(ctx, payload)
}

func (s *SlackNotifier) buildIncidentBlocks(outcome domain.OutcomeRecord) []SlackBlock {
	suspension := outcome.Suspension
	analysis := outcome.Analysis

	statusEmoji := "✅"
	if suspension.Status != domain.StatusSuccess {
		statusEmoji = "❌"
	}

	user := suspension.Username
	if user == "" {
		user = "unknown"
	}

	events := "N/A"
	if analysis.Status == domain.StatusSuccess {
		events = fmt.Sprintf("%d", analysis.EventsFound)
		if analysis.Truncated {
			events += " (limit reached)"
		}
	}

	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackText{
				Type: "plain_text",
				Text: "🔑 Exposed AWS Access Key Suspended",
			},
		},
		{
			Type: "section",
			Fields: []SlackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Access Key*\n`%s`", outcome.AccessKeyID)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*User*\n%s", user)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Suspension*\n%s %s", statusEmoji, suspension.Status)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Events Found*\n%s", events)},
			},
		},
	}

	if suspension.Status != domain.StatusSuccess {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("⚠️ *Key may still be active*\n%s", suspension.Message),
			},
		})
	}
	if analysis.Status != domain.StatusSuccess {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("⚠️ *Log analysis incomplete*\n%s", analysis.Message),
			},
		})
	}

	blocks = append(blocks, SlackBlock{Type: "divider"})

	if len(analysis.Findings) == 0 {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: "*🔍 Suspicious Activities*\nNone detected"},
		})
	} else {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: "*🔍 Suspicious Activities*"},
		})
		for i, f := range analysis.Findings {
			if i >= maxSlackFindings {
				blocks = append(blocks, SlackBlock{
					Type: "section",
					Text: &SlackText{
						Type: "mrkdwn",
						Text: fmt.Sprintf("_...and %d more findings_", len(analysis.Findings)-maxSlackFindings),
					},
				})
				break
			}
			blocks = append(blocks, SlackBlock{
				Type: "section",
				Text: &SlackText{
					Type: "mrkdwn",
					Text: findingText(f),
				},
			})
		}
	}

	blocks = append(blocks, SlackBlock{
		Type: "context",
		Elements: []SlackText{
			{
				Type: "mrkdwn",
				Text: fmt.Sprintf("Incident *%s* | Window: %s to %s",
					outcome.IncidentID,
					formatSlackTime(analysis.TimeRange.Start),
					formatSlackTime(analysis.TimeRange.End)),
			},
		},
	})

	if s.mentionTeam != "" {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("🔔 %s", s.mentionTeam),
			},
		})
	}

	return blocks
}

func findingText(f domain.Finding) string {
	severityEmoji := map[domain.Severity]string{
		domain.SeverityHigh:   "🟠",
		domain.SeverityMedium: "🟡",
		domain.SeverityLow:    "🟢",
	}
	emoji := severityEmoji[f.Severity]
	if emoji == "" {
		emoji = "⚠️"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *%s* %s", emoji, f.Severity, f.Description)
	if f.EventID != "" {
		fmt.Fprintf(&sb, "\n• Event: `%s`", f.EventID)
	}
	if f.Timestamp != "" {
		fmt.Fprintf(&sb, "\n• Time: %s", f.Timestamp)
	}
	return sb.String()
}

func formatSlackTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func (s *SlackNotifier) sendMessage(ctx context.Context, msg SlackMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.botToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	// chat.postMessage reports most failures with a 200 and ok=false
	var apiResp slackResponse
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read slack response: %w", err)
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("failed to decode slack response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("slack API error: %s", apiResp.Error)
	}

	return nil
}

// Slack API structures

type SlackMessage struct {
	Channel string       `json:"channel"`
	Blocks  []SlackBlock `json:"blocks"`
	Text    string       `json:"text"` // Fallback text
}

type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Fields   []SlackText `json:"fields,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
