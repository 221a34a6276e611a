package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/config"
)

const (
	defaultCooldown   = 24 * time.Hour
	maxHistoryLen     = 200
	recentWindowHours = 24
)

// Student is the per-student input to Evaluate.
type Student struct {
	Roll       string
	Name       string
	Present    int
	Total      int
	Percentage float64
	Label      string
	Severity   int
}

// Alert is a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Roll       string     `json:"roll"`
	Name       string     `json:"name"`
	Percentage float64    `json:"percentage"`
	Present    int        `json:"present"`
	Total      int        `json:"total"`
	Label      string     `json:"label"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against the roster and delivers webhook
// notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig
	now      func() time.Time

	mu       sync.Mutex
	active   map[string]*Alert    // key: "ruleName:roll"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
	wg       sync.WaitGroup
}

// New creates an Engine from the alert configuration.
// An Engine with no rules is valid; Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		now:      time.Now,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate tests every rule against every student. Alerts that fire are
// stored and webhook delivery is triggered asynchronously. Alerts that were
// firing but whose condition is now false are resolved.
func (e *Engine) Evaluate(students []Student) {
	if len(e.rules) == 0 {
		return
	}
	now := e.now()
	for _, s := range students {
		for _, rule := range e.rules {
			e.evaluate(rule, s, now)
		}
	}
}

func (e *Engine) evaluate(rule config.AlertRule, s Student, now time.Time) {
	key := rule.Name + ":" + s.Roll
	fires, value := evalCondition(rule.Condition, s)

	e.mu.Lock()
	if !fires {
		a, ok := e.active[key]
		if !ok {
			e.mu.Unlock()
			return
		}
		resolved := now
		a.State = "resolved"
		a.ResolvedAt = &resolved
		a.setStudent(s)
		delete(e.active, key)

		e.history = append(e.history, a)
		if len(e.history) > maxHistoryLen {
			e.history = e.history[len(e.history)-maxHistoryLen:]
		}
		alertCopy := *a
		e.mu.Unlock()

		slog.Info("alerts: resolved", "rule", rule.Name, "roll", s.Roll)
		e.dispatch(&alertCopy)
		return
	}

	cooldown := rule.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	if _, firing := e.active[key]; firing || now.Sub(e.lastFire[key]) <= cooldown {
		e.mu.Unlock()
		return
	}

	sev := rule.Severity
	if sev == "" {
		sev = "warning"
	}
	a := &Alert{
		ID:       fmt.Sprintf("%s:%s:%d", rule.Name, s.Roll, now.UnixNano()),
		RuleName: rule.Name,
		Roll:     s.Roll,
		Severity: sev,
		Value:    value,
		Message: fmt.Sprintf("[%s] %s fired for %s (%s): %s, attendance %.2f%% (%d/%d)",
			sev, rule.Name, s.Roll, s.Name, rule.Condition, s.Percentage, s.Present, s.Total),
		FiredAt: now,
		State:   "firing",
	}
	a.setStudent(s)
	e.active[key] = a
	e.lastFire[key] = now
	alertCopy := *a
	e.mu.Unlock()

	slog.Warn("alerts: fired",
		"rule", rule.Name,
		"roll", s.Roll,
		"value", value,
		"severity", sev,
	)
	e.dispatch(&alertCopy)
}

// setStudent records the student's standing at the time of the transition.
func (a *Alert) setStudent(s Student) {
	a.Name = s.Name
	a.Percentage = s.Percentage
	a.Present = s.Present
	a.Total = s.Total
	a.Label = s.Label
}

func (e *Engine) dispatch(a *Alert) {
	if len(e.webhooks) == 0 {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.deliver(a)
	}()
}

// Wait blocks until every pending webhook delivery has finished.
func (e *Engine) Wait() { e.wg.Wait() }

// Active returns copies of all firing alerts plus those resolved within the
// recent window, newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}

// Firing returns the number of alerts currently firing.
func (e *Engine) Firing() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}
