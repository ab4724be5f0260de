package analytics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "template-backend/pkg/errors"
	"template-backend/pkg/observability"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DefaultSessionTimeout matches the analytics service default
const DefaultSessionTimeout = 30 * time.Second

// TrackerConfig configures a Tracker
type TrackerConfig struct {
	TrackingID     string
	Endpoint       string
	SessionTimeout time.Duration
	AppName        string
	AppVersion     string
	HTTPClient     *http.Client
}

// Tracker sends Measurement Protocol hits for one tracking ID
type Tracker struct {
	cfg      TrackerConfig
	clientID string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	metrics  *observability.Metrics
	logger   *zap.Logger

	mu      sync.Mutex
	lastHit time.Time
	now     func() time.Time
}

// NewTracker creates a tracker. metrics may be nil.
func NewTracker(cfg TrackerConfig, metrics *observability.Metrics, logger *zap.Logger) (*Tracker, error) {
	if cfg.TrackingID == "" {
		return nil, fmt.Errorf("analytics tracker requires a tracking id")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("analytics tracker requires an endpoint")
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	logger = logger.Named("Analytics")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "analytics-tracker",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Tracker{
		cfg:      cfg,
		clientID: uuid.NewString(),
		client:   client,
		breaker:  breaker,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// ClientID is the anonymous id sent with every hit
func (t *Tracker) ClientID() string {
	return t.clientID
}

// TrackingID is the property the tracker reports to
func (t *Tracker) TrackingID() string {
	return t.cfg.TrackingID
}

// Send posts one hit. Params cannot replace the protocol version, tracking ID
// or client ID.
func (t *Tracker) Send(ctx context.Context, params map[string]string) error {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("v", "1")
	form.Set("tid", t.cfg.TrackingID)
	form.Set("cid", t.clientID)
	if t.cfg.AppName != "" && form.Get("an") == "" {
		form.Set("an", t.cfg.AppName)
	}
	if t.cfg.AppVersion != "" && form.Get("av") == "" {
		form.Set("av", t.cfg.AppVersion)
	}
	if t.startsSession() {
		form.Set("sc", "start")
	}

	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.post(ctx, form)
	})
	t.record(err)
	if err != nil {
		t.logger.Warn("Analytics hit failed", zap.Error(err))
		return apperrors.NewExternalError("analytics", err)
	}
	return nil
}

func (t *Tracker) post(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analytics endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// startsSession reports whether this hit opens a new session and records it
func (t *Tracker) startsSession() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	start := t.lastHit.IsZero() || now.Sub(t.lastHit) > t.cfg.SessionTimeout
	t.lastHit = now
	return start
}

func (t *Tracker) record(err error) {
	if t.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	t.metrics.AnalyticsHits.WithLabelValues(result).Inc()
}
