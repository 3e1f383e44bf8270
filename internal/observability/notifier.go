package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// Notifier sends alert notifications to external channels.
type Notifier interface {
	Notify(alerts []Alert) error
}

// slackNotifier sends alert notifications to a Slack webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that sends alerts to the given Slack webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewNotifier returns a Slack notifier when notifications are enabled and a
// webhook is configured, and a notifier that drops everything otherwise.
func NewNotifier(cfg models.NotificationsConfig) Notifier {
	if !cfg.Enabled || cfg.Slack.WebhookURL == "" {
		return nopNotifier{}
	}
	return NewSlackNotifier(cfg.Slack.WebhookURL)
}

type nopNotifier struct{}

func (nopNotifier) Notify([]Alert) error { return nil }

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string       `json:"type"`
	Text     *slackText   `json:"text,omitempty"`
	Fields   []*slackText `json:"fields,omitempty"`
	Elements []*slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// conditionOrder is the order alert groups appear in a message.
var conditionOrder = []string{
	ConditionOverdue,
	ConditionDueToday,
	ConditionTimerTooLong,
	ConditionUrgentUnassigned,
}

var conditionTitles = map[string]string{
	ConditionOverdue:          "Overdue tasks",
	ConditionDueToday:         "Due today",
	ConditionTimerTooLong:     "Long-running timer",
	ConditionUrgentUnassigned: "Urgent and unassigned",
}

// Notify sends the given alerts to the configured Slack webhook.
// It returns nil without making a request if the alerts slice is empty.
func (s *slackNotifier) Notify(alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	msg := s.buildMessage(alerts)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// buildMessage renders one group per alert condition. Each task gets a
// section whose fields carry the detail of that condition: the due date for
// due alerts and the elapsed time for the timer alert.
func (s *slackNotifier) buildMessage(alerts []Alert) slackMessage {
	summary := fmt.Sprintf("tally: %d alert(s)", len(alerts))
	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: summary}},
	}

	for _, group := range groupByCondition(alerts) {
		first := group[0]
		title, ok := conditionTitles[first.Condition]
		if !ok {
			title = first.Condition
		}
		blocks = append(blocks,
			slackBlock{Type: "divider"},
			slackBlock{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("%s *%s* (%d)", severityEmoji(first.Severity), title, len(group))},
			},
		)
		for _, a := range group {
			blocks = append(blocks, slackBlock{Type: "section", Fields: alertFields(a)})
		}
	}

	blocks = append(blocks, slackBlock{
		Type: "context",
		Elements: []*slackText{{
			Type: "mrkdwn",
			Text: "Evaluated " + alerts[0].TriggeredAt.UTC().Format("2006-01-02 15:04 UTC"),
		}},
	})

	return slackMessage{Text: summary, Blocks: blocks}
}

// groupByCondition keeps alerts of one condition together in conditionOrder;
// unknown conditions follow in order of first appearance.
func groupByCondition(alerts []Alert) [][]Alert {
	byCondition := make(map[string][]Alert)
	var extra []string
	for _, a := range alerts {
		if _, seen := byCondition[a.Condition]; !seen && conditionTitles[a.Condition] == "" {
			extra = append(extra, a.Condition)
		}
		byCondition[a.Condition] = append(byCondition[a.Condition], a)
	}

	var groups [][]Alert
	for _, c := range append(append([]string{}, conditionOrder...), extra...) {
		if g := byCondition[c]; len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

func alertFields(a Alert) []*slackText {
	name := a.TaskName
	if name == "" {
		name = a.Message
	}
	task := "*Task*\n" + name
	if a.TaskID != "" {
		task += " (`" + a.TaskID + "`)"
	}
	fields := []*slackText{{Type: "mrkdwn", Text: task}}

	switch {
	case a.DueDate != nil:
		fields = append(fields, &slackText{Type: "mrkdwn", Text: "*Due*\n" + a.DueDate.Format("Jan 2")})
	case a.RunningFor > 0:
		fields = append(fields, &slackText{Type: "mrkdwn", Text: "*Running for*\n" + formatRunning(a.RunningFor)})
	default:
		fields = append(fields, &slackText{Type: "mrkdwn", Text: "*Severity*\n" + strings.ToUpper(string(a.Severity))})
	}
	return fields
}

// formatRunning renders whole minutes as "9h 30m".
func formatRunning(d time.Duration) string {
	d = d.Truncate(time.Minute)
	h, m := int(d/time.Hour), int(d%time.Hour/time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func severityEmoji(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "\U0001f534"
	case SeverityMedium:
		return "\U0001f7e1"
	case SeverityLow:
		return "\U0001f535"
	default:
		return "\u2753"
	}
}
