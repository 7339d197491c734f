package jobqueue

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/arenahub/statsync/internal/platform/logging"
	"github.com/arenahub/statsync/internal/platform/resilience"
)

var errQueueTransient = crerr.New("work queue transient failure")

type PublisherConfig struct {
	BaseURL        string
	Token          string
	Retries        int
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher pushes import work items to the downstream statistics workers
// over the queue broker's HTTP publish endpoint.
type Publisher struct {
	client         *http.Client
	baseURL        string
	token          string
	retries        int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewPublisher(cfg PublisherConfig, logger *logging.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Publisher{
		client:         &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		retries:        cfg.Retries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type tournamentPayload struct {
	TournamentID int64 `json:"tournament_id"`
}

type participantPayload struct {
	ParticipantID int64 `json:"participant_id"`
	SportID       int64 `json:"sport_id"`
	IsThrowPlayer bool  `json:"is_throw_player"`
}

func (p *Publisher) PublishTournament(ctx context.Context, tournamentID int64) error {
	dedup := "tournament-" + strconv.FormatInt(tournamentID, 10)
	return p.publish(ctx, "/jobs/recount-tournament", tournamentPayload{TournamentID: tournamentID}, dedup)
}

func (p *Publisher) PublishParticipant(ctx context.Context, participantID, sportID int64, isThrowPlayer bool) error {
	dedup := fmt.Sprintf("participant-%d-%d-%t", participantID, sportID, isThrowPlayer)
	return p.publish(ctx, "/jobs/recount-participant", participantPayload{
		ParticipantID: participantID,
		SportID:       sportID,
		IsThrowPlayer: isThrowPlayer,
	}, dedup)
}

func (p *Publisher) publish(ctx context.Context, path string, payload any, deduplicationID string) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "work queue circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("work queue is temporarily unavailable: %w", err)
		}
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QUEUE_BASE_URL")
	}
	publishURL := baseURL + "/v2/publish" + path

	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal work item payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create queue request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if deduplicationID != "" {
		req.Header.Set("Upstash-Deduplication-Id", deduplicationID)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: publish work item url=%s: %v", errQueueTransient, publishURL, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := fmt.Errorf(
			"publish work item status=%d url=%s body=%s",
			resp.StatusCode, publishURL, strings.TrimSpace(string(raw)),
		)
		if isRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %v", errQueueTransient, callErr)
		}
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.InfoContext(ctx, "work item published", "path", path, "deduplication_id", deduplicationID)
	p.recordCircuitResult(nil)
	return nil
}

func (p *Publisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errQueueTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
