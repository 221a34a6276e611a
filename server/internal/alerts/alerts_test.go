package alerts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/config"
)

func student(roll string, present, total int, label string) Student {
	pct := 0.0
	if total > 0 {
		pct = float64(present) / float64(total) * 100
	}
	return Student{Roll: roll, Name: "N " + roll, Present: present, Total: total, Percentage: pct, Label: label}
}

func TestEvalCondition(t *testing.T) {
	s := student("S1", 3, 5, "Not Eligible")
	s.Severity = 2
	tests := []struct {
		cond      string
		wantFire  bool
		wantValue float64
	}{
		{"percentage < 75", true, 60},
		{"percentage >= 75", false, 60},
		{"absent >= 2", true, 2},
		{"present == 3", true, 3},
		{"total != 5", false, 5},
		{"severity > 1", true, 2},
		{"label == Not Eligible", true, 60},
		{"label != Not Eligible", false, 60},
		{"label > x", false, 0},
		{"unknown < 1", false, 0},
		{"percentage < abc", false, 0},
		{"percentage ~ 5", false, 60},
		{"percentage", false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.cond, func(t *testing.T) {
			fire, v := evalCondition(tc.cond, s)
			if fire != tc.wantFire || v != tc.wantValue {
				t.Errorf("got (%v, %v), want (%v, %v)", fire, v, tc.wantFire, tc.wantValue)
			}
		})
	}
}

func newEngine(rules ...config.AlertRule) (*Engine, *time.Time) {
	e := New(config.AlertsConfig{Rules: rules})
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	return e, &now
}

func TestEngine_FireAndResolve(t *testing.T) {
	e, now := newEngine(config.AlertRule{Name: "low", Condition: "percentage < 60", Severity: "critical"})

	e.Evaluate([]Student{student("S1", 1, 4, "CRITICAL"), student("S2", 4, 4, "SAFE")})
	if e.Firing() != 1 {
		t.Fatalf("Firing: got %d, want 1", e.Firing())
	}
	active := e.Active()
	if active[0].Roll != "S1" || active[0].Severity != "critical" || active[0].Value != 25 {
		t.Errorf("alert: got %+v", active[0])
	}

	*now = now.Add(time.Hour)
	e.Evaluate([]Student{student("S1", 4, 5, "SAFE")})
	if e.Firing() != 0 {
		t.Errorf("Firing after recovery: got %d, want 0", e.Firing())
	}
	active = e.Active()
	if len(active) != 1 || active[0].State != "resolved" || active[0].ResolvedAt == nil {
		t.Errorf("resolved alert: got %+v", active)
	}
}

func TestEngine_Cooldown(t *testing.T) {
	e, now := newEngine(config.AlertRule{Name: "low", Condition: "percentage < 60", Cooldown: 2 * time.Hour})
	low := []Student{student("S1", 0, 2, "CRITICAL")}
	ok := []Student{student("S1", 2, 2, "SAFE")}

	e.Evaluate(low)
	e.Evaluate(ok)   // resolves
	e.Evaluate(low)  // within cooldown, suppressed
	if e.Firing() != 0 {
		t.Fatalf("re-fire inside cooldown: Firing = %d", e.Firing())
	}

	*now = now.Add(3 * time.Hour)
	e.Evaluate(low)
	if e.Firing() != 1 {
		t.Errorf("after cooldown: Firing = %d, want 1", e.Firing())
	}
	if a := e.Active()[0]; a.Severity != "warning" {
		t.Errorf("default severity: got %q", a.Severity)
	}
}

func TestEngine_NoRules(t *testing.T) {
	e, _ := newEngine()
	e.Evaluate([]Student{student("S1", 0, 5, "CRITICAL")})
	if n := len(e.Active()); n != 0 {
		t.Errorf("Active: got %d, want 0", n)
	}
}

func TestEngine_WebhookDelivery(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies = map[string][]map[string]interface{}{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var b map[string]interface{}
		json.NewDecoder(r.Body).Decode(&b) //nolint:errcheck
		mu.Lock()
		bodies[r.URL.Path] = append(bodies[r.URL.Path], b)
		mu.Unlock()
	}))
	defer srv.Close()
	t.Setenv("TEST_SLACK_HOOK", srv.URL+"/slack")
	t.Setenv("TEST_TEAMS_HOOK", srv.URL+"/teams")
	t.Setenv("TEST_HTTP_HOOK", srv.URL+"/http")

	e := New(config.AlertsConfig{
		Rules: []config.AlertRule{{Name: "ineligible", Condition: "label == Not Eligible"}},
		Webhooks: []config.WebhookConfig{
			{Type: "slack", URLEnv: "TEST_SLACK_HOOK"},
			{Type: "teams", URLEnv: "TEST_TEAMS_HOOK"},
			{Type: "http", URLEnv: "TEST_HTTP_HOOK"},
			{Type: "http", URLEnv: "TEST_UNSET_HOOK"},
		},
	})
	s := student("S7", 1, 4, "Not Eligible")
	e.Evaluate([]Student{s})
	e.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(bodies["/slack"]) != 1 || len(bodies["/teams"]) != 1 || len(bodies["/http"]) != 1 {
		t.Fatalf("deliveries: got %v", bodies)
	}

	slack := bodies["/slack"][0]
	if text, _ := slack["text"].(string); !strings.Contains(text, "N S7 (S7) is Not Eligible at 25.00%") {
		t.Errorf("slack text: got %q", text)
	}
	if !strings.Contains(fmt.Sprint(slack["attachments"]), "25.00% (1 of 4)") {
		t.Errorf("slack attachments: got %v", slack["attachments"])
	}

	teams := bodies["/teams"][0]
	if teams["@type"] != "MessageCard" || !strings.Contains(fmt.Sprint(teams["sections"]), "Not Eligible") {
		t.Errorf("teams payload: got %v", teams)
	}

	alert, ok := bodies["/http"][0]["alert"].(map[string]interface{})
	if !ok || alert["roll"] != "S7" || alert["state"] != "firing" || alert["label"] != "Not Eligible" || alert["total"] != float64(4) {
		t.Errorf("http payload: got %v", bodies["/http"][0])
	}
}

func TestHeadline(t *testing.T) {
	a := &Alert{RuleName: "ineligible", Roll: "S1", Name: "Asha", Percentage: 80, Label: "Eligible", State: "resolved"}
	if got, want := headline(a), "Asha (S1) no longer matches ineligible: now Eligible at 80.00%"; got != want {
		t.Errorf("resolved headline: got %q, want %q", got, want)
	}
	a = &Alert{Roll: "S2", Percentage: 12.5, Label: "Not Eligible", State: "firing"}
	if got, want := headline(a), "S2 is Not Eligible at 12.50% attendance"; got != want {
		t.Errorf("firing headline: got %q, want %q", got, want)
	}
}

func TestStateTag(t *testing.T) {
	tests := []struct {
		sev, state, tag, color string
	}{
		{"critical", "resolved", "[RESOLVED]", "2E7D32"},
		{"critical", "firing", "[CRITICAL]", "C62828"},
		{"warning", "firing", "[WARNING]", "F9A825"},
		{"info", "firing", "[INFO]", "607D8B"},
	}
	for _, tc := range tests {
		a := &Alert{Severity: tc.sev, State: tc.state}
		if got := stateTag(a); got != tc.tag {
			t.Errorf("stateTag(%s, %s) = %q, want %q", tc.sev, tc.state, got, tc.tag)
		}
		if got := stateColor(a); got != tc.color {
			t.Errorf("stateColor(%s, %s) = %q, want %q", tc.sev, tc.state, got, tc.color)
		}
	}
}
