// Package fantrax talks to the Fantrax fxpa endpoint. Every call is a
// POST carrying a single method invocation; authentication rides on a
// session cookie captured from a logged-in browser.
package fantrax

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerrors "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/resilience"
)

var (
	// ErrTransient marks failures worth retrying: network errors,
	// timeouts, rate limits, upstream 5xx.
	ErrTransient = crerrors.New("fantrax: transient failure")
	// ErrUnauthorized marks an expired or missing session cookie.
	// Retrying without re-authenticating cannot succeed.
	ErrUnauthorized = crerrors.New("fantrax: not logged in")
)

const (
	methodTeamRoster    = "getTeamRosterInfo"
	methodStandings     = "getStandingsSport"
	methodFixtures      = "getFixtures"
	methodPlayerProfile = "getPlayerProfile"
	methodRosterChanges = "confirmOrExecuteTeamRosterChanges"
)

type ClientConfig struct {
	BaseURL  string
	LeagueID string
	// Cookie is the raw Cookie header value of an authenticated
	// session.
	Cookie         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	Breaker        resilience.BreakerConfig
}

func (c ClientConfig) validate() error {
	if c.BaseURL == "" {
		return crerrors.New("fantrax: base url required")
	}
	if c.LeagueID == "" {
		return crerrors.New("fantrax: league id required")
	}
	if c.Cookie == "" {
		return crerrors.New("fantrax: session cookie required")
	}
	return nil
}

type Client struct {
	cfg     ClientConfig
	http    *http.Client
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
	flight  *resilience.SingleFlight
}

func NewClient(cfg ClientConfig, logger *logging.Logger) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		logger:  logger,
		breaker: resilience.NewCircuitBreaker(cfg.Breaker),
		flight:  resilience.NewSingleFlight(),
	}, nil
}

// FetchRoster returns the platform roster for one team and period.
// Concurrent duplicate fetches collapse onto one request.
func (c *Client) FetchRoster(ctx context.Context, teamID string, periodID int) (*RosterSnapshot, error) {
	key := "roster:" + teamID + ":" + strconv.Itoa(periodID)
	value, _, err := c.flight.Do(key, func() (any, error) {
		data, err := c.callWithRetry(ctx, methodTeamRoster, map[string]any{
			"teamId": teamID,
			"period": periodID,
		})
		if err != nil {
			return nil, err
		}
		return parseRosterSnapshot(teamID, periodID, data)
	})
	if err != nil {
		return nil, err
	}
	return value.(*RosterSnapshot), nil
}

// FetchMatchupPeriod returns the scoring period the platform currently
// has in play. A roster fetch without an explicit period carries it in
// the displayed selections.
func (c *Client) FetchMatchupPeriod(ctx context.Context, teamID string) (int, error) {
	value, _, err := c.flight.Do("period:"+teamID, func() (any, error) {
		data, err := c.callWithRetry(ctx, methodTeamRoster, map[string]any{
			"teamId": teamID,
		})
		if err != nil {
			return nil, err
		}
		return parseMatchupPeriod(data)
	})
	if err != nil {
		return 0, err
	}
	return value.(int), nil
}

// FetchStandings returns the league table, used to weight fixture
// difficulty.
func (c *Client) FetchStandings(ctx context.Context) ([]TeamStanding, error) {
	value, _, err := c.flight.Do("standings", func() (any, error) {
		data, err := c.callWithRetry(ctx, methodStandings, map[string]any{})
		if err != nil {
			return nil, err
		}
		return parseStandings(data)
	})
	if err != nil {
		return nil, err
	}
	return value.([]TeamStanding), nil
}

// FetchFixtures returns the real-world matchups for a scoring period.
func (c *Client) FetchFixtures(ctx context.Context, periodID int) ([]Fixture, error) {
	value, _, err := c.flight.Do("fixtures:"+strconv.Itoa(periodID), func() (any, error) {
		data, err := c.callWithRetry(ctx, methodFixtures, map[string]any{
			"period": periodID,
		})
		if err != nil {
			return nil, err
		}
		return parseFixtures(data), nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]Fixture), nil
}

// FetchPlayerProfile returns recent per-period scoring for one player.
func (c *Client) FetchPlayerProfile(ctx context.Context, playerID string) (*PlayerProfile, error) {
	value, _, err := c.flight.Do("profile:"+playerID, func() (any, error) {
		data, err := c.callWithRetry(ctx, methodPlayerProfile, map[string]any{
			"scorerId": playerID,
		})
		if err != nil {
			return nil, err
		}
		return parsePlayerProfile(playerID, data), nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*PlayerProfile), nil
}

// ApplyRosterChanges submits a lineup change. It makes exactly one
// attempt; retry policy belongs to the caller, which tracks attempt
// counts per intent.
func (c *Client) ApplyRosterChanges(ctx context.Context, teamID string, periodID int, changes []RosterChange) error {
	if len(changes) == 0 {
		return nil
	}
	fieldMap := make(map[string]map[string]any, len(changes))
	for _, change := range changes {
		field := map[string]any{"stId": reserveStatusID}
		if change.Starter {
			field = map[string]any{"posId": change.PosID, "stId": starterStatusID}
		}
		fieldMap[change.PlayerID] = field
	}

	_, err := c.call(ctx, methodRosterChanges, map[string]any{
		"teamId":         teamID,
		"period":         periodID,
		"applyToFuture":  false,
		"fieldMap":       fieldMap,
		"doFinalization": true,
	})
	return err
}

// callWithRetry runs call under exponential backoff, retrying only
// transient failures.
func (c *Client) callWithRetry(ctx context.Context, method string, data map[string]any) (*rosterData, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		out, err := c.call(ctx, method, data)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !crerrors.Is(err, ErrTransient) {
			return nil, err
		}
		if attempt == c.cfg.MaxRetries {
			break
		}

		delay := c.cfg.RetryBaseDelay * time.Duration(1<<(attempt-1))
		c.logger.WarnContext(ctx, "fantrax call failed, retrying",
			"method", method,
			"attempt", attempt,
			"delay", delay.String(),
			"error", sanitizeSensitiveText(err.Error(), c.cfg.Cookie),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrTransient, ctx.Err())
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (c *Client) call(ctx context.Context, method string, data map[string]any) (*rosterData, error) {
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("%w: %w", ErrTransient, resilience.ErrCircuitOpen)
	}

	out, err := c.doCall(ctx, method, data)
	if err != nil {
		if crerrors.Is(err, ErrTransient) {
			c.breaker.ReportFailure()
		} else {
			c.breaker.ReportSuccess()
		}
		return nil, err
	}
	c.breaker.ReportSuccess()
	return out, nil
}

func (c *Client) doCall(ctx context.Context, method string, data map[string]any) (*rosterData, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	body, err := sonic.Marshal(requestEnvelope{Msgs: []requestMsg{{Method: method, Data: data}}})
	if err != nil {
		return nil, fmt.Errorf("fantrax: marshal %s request: %w", method, err)
	}
	if _, err := buf.Write(body); err != nil {
		return nil, fmt.Errorf("fantrax: buffer %s request: %w", method, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/fxpa/req?leagueId=" + c.cfg.LeagueID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(buf.String()))
	if err != nil {
		return nil, fmt.Errorf("fantrax: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", c.cfg.Cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrTransient, method, sanitizeSensitiveText(err.Error(), c.cfg.Cookie))
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, method); err != nil {
		io.Copy(io.Discard, resp.Body)
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrTransient, method, err)
	}

	var envelope responseEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s: malformed response: %v", ErrTransient, method, err)
	}
	if err := envelopeError(&envelope, method); err != nil {
		return nil, err
	}
	if len(envelope.Responses) == 0 {
		return nil, fmt.Errorf("%w: %s: empty response batch", ErrTransient, method)
	}
	return &envelope.Responses[0].Data, nil
}

func classifyStatus(status int, method string) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s: http %d", ErrUnauthorized, method, status)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: %s: http %d", ErrTransient, method, status)
	default:
		return fmt.Errorf("fantrax: %s: unexpected http %d", method, status)
	}
}

func envelopeError(envelope *responseEnvelope, method string) error {
	pe := envelope.PageError
	if pe == nil && len(envelope.Responses) > 0 {
		pe = envelope.Responses[0].PageError
	}
	if pe == nil {
		return nil
	}
	if pe.Code == pageErrorNotLoggedIn {
		return fmt.Errorf("%w: %s", ErrUnauthorized, method)
	}
	return fmt.Errorf("fantrax: %s: page error %s: %s", method, pe.Code, pe.Msg)
}

// sanitizeSensitiveText scrubs the session cookie from text destined
// for logs.
func sanitizeSensitiveText(text, cookie string) string {
	if cookie == "" {
		return text
	}
	return strings.ReplaceAll(text, cookie, "[redacted]")
}
