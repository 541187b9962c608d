package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// PushConfig describes the line-protocol endpoint metrics are shipped to.
type PushConfig struct {
	URL    string
	UserID string
	APIKey string
	Source string
}

// Pusher periodically ships a Collector snapshot as Influx line protocol.
type Pusher struct {
	collector *Collector
	cfg       PushConfig
	client    *http.Client
	cron      *cron.Cron
	log       *zap.Logger

	systemStats  func() (cpuPct, memPct float64)
	retries      int
	firstBackoff time.Duration
}

func NewPusher(collector *Collector, cfg PushConfig, log *zap.Logger) *Pusher {
	return &Pusher{
		collector:    collector,
		cfg:          cfg,
		client:       &http.Client{Timeout: 10 * time.Second},
		cron:         cron.New(),
		log:          log.Named("metrics"),
		systemStats:  systemStats,
		retries:      3,
		firstBackoff: 200 * time.Millisecond,
	}
}

// Start schedules a push every interval.
func (p *Pusher) Start(interval time.Duration) error {
	_, err := p.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if err := p.Push(context.Background()); err != nil {
			p.log.Warn("metrics push failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule metrics push: %w", err)
	}
	p.cron.Start()
	return nil
}

// Stop waits for a running push to finish.
func (p *Pusher) Stop() {
	<-p.cron.Stop().Done()
}

// Push sends one snapshot. Without a configured URL the lines are only logged.
func (p *Pusher) Push(ctx context.Context) error {
	lines := p.Lines()
	if p.cfg.URL == "" {
		p.log.Debug("metrics snapshot", zap.Strings("lines", lines))
		return nil
	}
	return p.send(ctx, strings.Join(lines, "\n"))
}

// Lines renders the current snapshot, one metric per line.
func (p *Pusher) Lines() []string {
	s := p.collector.Snapshot()
	cpuPct, memPct := p.systemStats()

	lines := []string{
		p.line("request", "all", "total", s.RequestsTotal),
	}
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		lines = append(lines, p.line("request", m, "total", s.Requests[m]))
	}
	return append(lines,
		p.line("auth", "successful", "total", s.AuthSuccessful),
		p.line("auth", "failed", "total", s.AuthFailed),
		p.line("users", "active", "total", s.ActiveUsers),
		p.line("pizza", "sold", "total", s.PizzasSold),
		p.line("pizza", "creationFailures", "total", s.PizzaFailures),
		p.line("pizza", "revenue", "total", s.Revenue),
		p.line("system", "cpu", "usage", cpuPct),
		p.line("system", "memory", "usage", memPct),
		p.line("latency", LatencyService, "avg", s.ServiceLatency.Milliseconds()),
		p.line("latency", LatencyPizzaCreation, "avg", s.PizzaLatency.Milliseconds()),
	)
}

func (p *Pusher) line(prefix, method, name string, value interface{}) string {
	var v string
	switch n := value.(type) {
	case int64:
		v = strconv.FormatInt(n, 10)
	case float64:
		v = strconv.FormatFloat(n, 'f', -1, 64)
	default:
		v = fmt.Sprint(n)
	}
	return fmt.Sprintf("%s,source=%s,method=%s %s=%s", prefix, p.cfg.Source, method, name, v)
}

// send retries only on 429, doubling the wait each time.
func (p *Pusher) send(ctx context.Context, body string) error {
	delay := p.firstBackoff
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, strings.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build metrics request: %w", err)
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s:%s", p.cfg.UserID, p.cfg.APIKey))
		req.Header.Set("Content-Type", "text/plain")

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to push metrics: %w", err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode < 300:
			return nil
		case resp.StatusCode != http.StatusTooManyRequests:
			return fmt.Errorf("metrics endpoint returned %d", resp.StatusCode)
		case attempt >= p.retries:
			return fmt.Errorf("metrics endpoint still rate limiting after %d attempts", attempt)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
}

func systemStats() (float64, float64) {
	var cpuPct, memPct float64
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		cpuPct = pcts[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		memPct = vm.UsedPercent
	}
	return cpuPct, memPct
}
