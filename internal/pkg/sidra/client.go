package sidra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-gota/gota/dataframe"
	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/pkg/logger"
	"github.com/ougirez/sidra/internal/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	DefaultMetadataURL    = "https://servicodados.ibge.gov.br/api/v3/agregados"
	DefaultDescriptionURL = "https://apisidra.ibge.gov.br/desctabapi.aspx"

	endpointValues      = "values"
	endpointMetadata    = "metadata"
	endpointDescription = "description"
)

type Config struct {
	MetadataURL    string
	ValuesURL      string
	DescriptionURL string
	Timeout        time.Duration
	// MaxRetries общее число попыток на один запрос
	MaxRetries      int
	RetryDelay      time.Duration
	RequestInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		MetadataURL:     DefaultMetadataURL,
		ValuesURL:       DefaultValuesURL,
		DescriptionURL:  DefaultDescriptionURL,
		Timeout:         30 * time.Second,
		MaxRetries:      2,
		RetryDelay:      5 * time.Second,
		RequestInterval: 5 * time.Second,
	}
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLimiter общий лимитер для нескольких клиентов.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// Client ходит в API IBGE: метаданные, значения и описание таблиц.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.MetadataURL == "" {
		cfg.MetadataURL = def.MetadataURL
	}
	if cfg.ValuesURL == "" {
		cfg.ValuesURL = def.ValuesURL
	}
	if cfg.DescriptionURL == "" {
		cfg.DescriptionURL = def.DescriptionURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.limiter == nil {
		c.limiter = NewLimiter(cfg.RequestInterval)
	}

	return c
}

// NewLimiter один запрос за interval, interval <= 0 - без ограничений.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func (c *Client) Config() Config {
	return c.cfg
}

// Fetch выполняет запросы по очереди. Ошибки не возвращаются, а остаются в результатах.
func (c *Client) Fetch(ctx context.Context, requests []domain.QueryRequest) []domain.FetchResult {
	results := make([]domain.FetchResult, 0, len(requests))
	for _, req := range requests {
		results = append(results, c.FetchOne(ctx, req))
	}
	return results
}

// FetchOne PENDING -> RETRYING* -> SUCCESS | EXHAUSTED, либо FAILED для неретраибл ошибки.
func (c *Client) FetchOne(ctx context.Context, req domain.QueryRequest) domain.FetchResult {
	res := domain.FetchResult{Request: req, State: domain.FetchStatePending}

	operation := func() error {
		res.Attempts++

		body, err := c.get(ctx, endpointValues, req.URL)
		if err != nil {
			if IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		frame, err := ParseValues(body)
		if err != nil {
			return backoff.Permanent(&FetchError{Kind: FetchErrorUnexpected, URL: req.URL, Err: err})
		}
		res.Frame = frame
		return nil
	}

	notify := func(err error, next time.Duration) {
		res.State = domain.FetchStateRetrying
		metrics.RetriesTotal.WithLabelValues(endpointValues).Inc()
		logger.Warnf(ctx, "attempt %d: %s, retry in %s", res.Attempts, err.Error(), next)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryDelay), uint64(c.cfg.MaxRetries-1)),
		ctx,
	)

	err := backoff.RetryNotify(operation, b, notify)
	switch {
	case err == nil:
		res.State = domain.FetchStateSuccess
	case IsRetryable(err):
		res.State = domain.FetchStateExhausted
		res.Err = err
		logger.Errorf(ctx, "request exhausted after %d attempts: %s", res.Attempts, req.URL)
	default:
		res.State = domain.FetchStateFailed
		res.Err = err
		logger.Errorf(ctx, "unexpected error for %s: %s", req.URL, err.Error())
	}
	metrics.FetchResultsTotal.WithLabelValues(string(res.State)).Inc()

	return res
}

// Collect склеивает успешные результаты одной переменной в порядке запросов
// и возвращает неуспешные отдельно.
func Collect(results []domain.FetchResult) (dataframe.DataFrame, []domain.FetchResult, error) {
	frames := make([]dataframe.DataFrame, 0, len(results))
	var failed []domain.FetchResult
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, r)
			continue
		}
		frames = append(frames, r.Frame)
	}

	df, err := Concat(frames)
	if err != nil {
		return dataframe.DataFrame{}, failed, err
	}

	return df, failed, nil
}

// Metadata одна попытка GET {metadata}/{id}/metadados. Повторы на стороне вызывающего.
func (c *Client) Metadata(ctx context.Context, tableID int64) ([]byte, error) {
	url := fmt.Sprintf("%s/%d/metadados", c.cfg.MetadataURL, tableID)
	return c.get(ctx, endpointMetadata, url)
}

func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Kind: FetchErrorUnexpected, URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorUnexpected, URL: url, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(endpoint, "error").Inc()
		if ctx.Err() != nil {
			return nil, &FetchError{Kind: FetchErrorUnexpected, URL: url, Err: ctx.Err()}
		}
		// соединение, таймаут, редиректы
		return nil, &FetchError{Kind: FetchErrorRetryable, URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, &FetchError{
			Kind:       FetchErrorRetryable,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorRetryable, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}

type FetchErrorKind string

const (
	FetchErrorRetryable  FetchErrorKind = "retryable"
	FetchErrorUnexpected FetchErrorKind = "unexpected"
)

type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch error: %s: %s", e.Kind, e.URL, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == FetchErrorRetryable
	}
	return false
}
