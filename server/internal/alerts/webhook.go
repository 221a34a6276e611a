package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// payloads builds the request body for each supported webhook type.
var payloads = map[string]func(*Alert) interface{}{
	"slack": slackPayload,
	"teams": teamsPayload,
	"http":  httpPayload,
}

// deliver posts a to every configured webhook. Failures are logged only.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		build, ok := payloads[wh.Type]
		if url == "" || !ok {
			continue
		}
		body, err := json.Marshal(build(a))
		if err == nil {
			err = e.post(url, body)
		}
		if err != nil {
			slog.Error("alerts: webhook delivery failed", "type", wh.Type, "roll", a.Roll, "err", err)
			continue
		}
		slog.Debug("alerts: webhook delivered", "type", wh.Type, "roll", a.Roll, "state", a.State)
	}
}

// headline is the one-line summary shared by the chat payloads.
func headline(a *Alert) string {
	who := a.Roll
	if a.Name != "" {
		who = fmt.Sprintf("%s (%s)", a.Name, a.Roll)
	}
	if a.State == "resolved" {
		return fmt.Sprintf("%s no longer matches %s: now %s at %.2f%%", who, a.RuleName, a.Label, a.Percentage)
	}
	return fmt.Sprintf("%s is %s at %.2f%% attendance", who, a.Label, a.Percentage)
}

// facts are the name/value pairs shown under the headline.
func facts(a *Alert) [][2]string {
	return [][2]string{
		{"Roll", a.Roll},
		{"Attendance", fmt.Sprintf("%.2f%% (%d of %d)", a.Percentage, a.Present, a.Total)},
		{"Band", a.Label},
		{"Rule", a.RuleName},
	}
}

func slackPayload(a *Alert) interface{} {
	fields := make([]map[string]interface{}, 0, 4)
	for _, f := range facts(a) {
		fields = append(fields, map[string]interface{}{"title": f[0], "value": f[1], "short": true})
	}
	return map[string]interface{}{
		"text": fmt.Sprintf("*%s* %s", stateTag(a), headline(a)),
		"attachments": []map[string]interface{}{{
			"color":  "#" + stateColor(a),
			"fields": fields,
		}},
	}
}

func teamsPayload(a *Alert) interface{} {
	list := make([]map[string]string, 0, 4)
	for _, f := range facts(a) {
		list = append(list, map[string]string{"name": f[0], "value": f[1]})
	}
	return map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": stateColor(a),
		"summary":    headline(a),
		"title":      stateTag(a) + " Attendance alert",
		"sections": []map[string]interface{}{{
			"activityTitle": headline(a),
			"facts":         list,
		}},
	}
}

func httpPayload(a *Alert) interface{} {
	return map[string]interface{}{"event": "attendance_alert", "alert": a}
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func stateTag(a *Alert) string {
	if a.State == "resolved" {
		return "[RESOLVED]"
	}
	switch a.Severity {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

// stateColor is green once resolved, else red, amber or grey by severity.
func stateColor(a *Alert) string {
	if a.State == "resolved" {
		return "2E7D32"
	}
	switch a.Severity {
	case "critical":
		return "C62828"
	case "warning":
		return "F9A825"
	default:
		return "607D8B"
	}
}
