package harvest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/domain/dto"
	"github.com/ougirez/sidra/internal/pkg/logger"
	"github.com/ougirez/sidra/internal/pkg/metrics"
	"github.com/ougirez/sidra/internal/pkg/sidra"
	"golang.org/x/sync/errgroup"
)

var ErrTableBudgetExceeded = errors.New("table time budget exceeded")

// Fetcher реализуется *sidra.Client.
type Fetcher interface {
	Metadata(ctx context.Context, tableID int64) ([]byte, error)
	Fetch(ctx context.Context, requests []domain.QueryRequest) []domain.FetchResult
}

// Sink реализуется store.Store.
type Sink interface {
	SaveTable(ctx context.Context, runID string, res *dto.TableResult) error
	SaveFailures(ctx context.Context, runID string, failures map[int64]int, reasons map[int64]string) error
}

type Config struct {
	MetadataRetries   int
	TableBudget       time.Duration
	ExecutionInterval time.Duration
	Concurrency       int
	RetryFailedDelay  time.Duration
	LatestOnly        bool
}

func DefaultConfig() Config {
	return Config{
		MetadataRetries:   3,
		TableBudget:       120 * time.Second,
		ExecutionInterval: 5 * time.Second,
		Concurrency:       1,
		RetryFailedDelay:  5 * time.Second,
	}
}

type Option func(*Service)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithSink(sink Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

type Service struct {
	cfg      Config
	fetcher  Fetcher
	compiler *sidra.Compiler
	sink     Sink
	clock    clockwork.Clock
}

func NewHarvestService(cfg Config, fetcher Fetcher, compiler *sidra.Compiler, opts ...Option) *Service {
	if cfg.MetadataRetries <= 0 {
		cfg.MetadataRetries = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.TableBudget <= 0 {
		cfg.TableBudget = DefaultConfig().TableBudget
	}

	s := &Service{
		cfg:      cfg,
		fetcher:  fetcher,
		compiler: compiler,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// tableFailure неуспешная таблица: число попыток и причина.
type tableFailure struct {
	retries int
	reason  string
}

// Run собирает таблицы по списку. Ошибка одной таблицы не прерывает остальные,
// такие таблицы попадают в Failures.
func (s *Service) Run(ctx context.Context, tableIDs []int64) (*dto.HarvestResult, error) {
	return s.run(ctx, uuid.NewString(), tableIDs)
}

// RetryFailed повторно собирает только упавшие таблицы, один раз.
func (s *Service) RetryFailed(ctx context.Context, failures map[int64]int) (*dto.HarvestResult, error) {
	if len(failures) == 0 {
		return dto.NewHarvestResult(uuid.NewString(), 0), nil
	}

	ids := make([]int64, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	logger.Infof(ctx, "retrying %d failed tables in %s", len(ids), s.cfg.RetryFailedDelay)
	if s.cfg.RetryFailedDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.clock.After(s.cfg.RetryFailedDelay):
		}
	}

	return s.run(ctx, uuid.NewString(), ids)
}

func (s *Service) run(ctx context.Context, runID string, tableIDs []int64) (*dto.HarvestResult, error) {
	ctx = logger.WithFields(ctx, "run_id", runID)
	start := s.clock.Now()

	tableIDs = uniqueIDs(tableIDs)
	result := dto.NewHarvestResult(runID, len(tableIDs))
	slots := make([]*dto.TableResult, len(tableIDs))

	reasons := make(map[int64]string)
	reasonsMx := sync.Mutex{}

	eg := errgroup.Group{}
	eg.SetLimit(s.cfg.Concurrency)
	for i, id := range tableIDs {
		i, id := i, id
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			tableCtx := logger.WithFields(ctx, "table_id", id)
			tr, failure := s.harvestTable(tableCtx, id)
			if failure != nil {
				metrics.TablesTotal.WithLabelValues("failed").Inc()
				logger.Errorf(tableCtx, "table %d failed after %d attempts: %s", id, failure.retries, failure.reason)

				result.PutFailure(id, failure.retries)
				reasonsMx.Lock()
				reasons[id] = failure.reason
				reasonsMx.Unlock()
				return nil
			}

			metrics.TablesTotal.WithLabelValues("success").Inc()
			slots[i] = tr

			if s.sink != nil {
				if err := s.sink.SaveTable(tableCtx, runID, tr); err != nil {
					logger.Errorf(tableCtx, "SaveTable: %s", err.Error())
				}
			}
			return nil
		})
	}
	_ = eg.Wait()

	for _, tr := range slots {
		if tr != nil {
			result.Tables = append(result.Tables, tr)
		}
	}

	if s.sink != nil {
		if err := s.sink.SaveFailures(ctx, runID, result.FailuresCopy(), reasons); err != nil {
			logger.Errorf(ctx, "SaveFailures: %s", err.Error())
		}
	}

	metrics.HarvestDuration.Observe(s.clock.Since(start).Seconds())
	logger.Infof(ctx, "harvest finished: %d tables ok, %d failed", len(result.Tables), len(result.Failures))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Service) harvestTable(ctx context.Context, tableID int64) (*dto.TableResult, *tableFailure) {
	raw, attempts, err := s.fetchMetadata(ctx, tableID)
	if err != nil {
		return nil, &tableFailure{retries: attempts, reason: err.Error()}
	}

	normalized, err := sidra.Normalize(tableID, raw)
	if err != nil {
		return nil, &tableFailure{retries: attempts, reason: fmt.Errorf("normalize: %w", err).Error()}
	}
	table := normalized.Table

	// окна считаются один раз на таблицу, ошибка окон - ошибка таблицы
	if !s.cfg.LatestOnly {
		if _, err = sidra.Windows(table.Frequency, table.PeriodStart, table.PeriodEnd); err != nil {
			return nil, &tableFailure{retries: attempts, reason: fmt.Errorf("windows: %w", err).Error()}
		}
	}

	res := &dto.TableResult{
		Table:      table,
		Variables:  normalized.Variables,
		Categories: normalized.Categories,
		Info:       sidra.InfoSheet(table),
	}

	filter := sidra.ClassificationFilter(normalized.Categories)
	for _, variable := range normalized.Variables {
		if ctx.Err() != nil {
			return nil, &tableFailure{retries: attempts, reason: ctx.Err().Error()}
		}
		res.PutSheet(s.harvestVariable(ctx, table, variable.ID, filter))
	}

	return res, nil
}

func (s *Service) harvestVariable(ctx context.Context, table *domain.Table, variableID int64, filter string) *domain.Sheet {
	sheet := &domain.Sheet{
		Name:       sidra.SheetName(variableID),
		VariableID: variableID,
	}

	requests, unmapped, err := s.compiler.Compile(sidra.CompileParams{
		TableID:              table.ID,
		VariableID:           variableID,
		ClassificationFilter: filter,
		TerritorialLevels:    table.TerritorialLevels,
		Frequency:            table.Frequency,
		PeriodStart:          table.PeriodStart,
		PeriodEnd:            table.PeriodEnd,
		LatestOnly:           s.cfg.LatestOnly,
	})
	if len(unmapped) > 0 {
		logger.Warnf(ctx, "table %d: unmapped territorial levels %v", table.ID, unmapped)
	}
	if err != nil {
		logger.Errorf(ctx, "compile variable %d: %s", variableID, err.Error())
		return sheet
	}
	if len(requests) == 0 {
		logger.Warnf(ctx, "variable %d: no requests for period %s-%s and levels %v",
			variableID, table.PeriodStart, table.PeriodEnd, table.TerritorialLevels)
		return sheet
	}

	results := s.fetcher.Fetch(ctx, requests)
	frame, failed, err := sidra.Collect(results)
	if err != nil {
		logger.Errorf(ctx, "collect variable %d: %s", variableID, err.Error())
	}
	sheet.Frame = frame
	sheet.Failed = failed

	if len(failed) > 0 {
		logger.Warnf(ctx, "variable %d: %d of %d requests failed", variableID, len(failed), len(requests))
	}

	return sheet
}

// fetchMetadata до MetadataRetries попыток, но не дольше TableBudget на таблицу.
func (s *Service) fetchMetadata(ctx context.Context, tableID int64) ([]byte, int, error) {
	start := s.clock.Now()
	attempts := 0

	var body []byte
	operation := func() error {
		attempts++

		b, err := s.fetcher.Metadata(ctx, tableID)
		if err == nil {
			body = b
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if s.clock.Since(start) >= s.cfg.TableBudget {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrTableBudgetExceeded, err.Error()))
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		metrics.RetriesTotal.WithLabelValues("metadata").Inc()
		logger.Warnf(ctx, "metadata attempt %d for table %d: %s, retry in %s", attempts, tableID, err.Error(), next)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.cfg.ExecutionInterval), uint64(s.cfg.MetadataRetries-1)),
		ctx,
	)

	if err := backoff.RetryNotifyWithTimer(operation, b, notify, &clockTimer{clock: s.clock}); err != nil {
		return nil, attempts, fmt.Errorf("metadata: %w", err)
	}

	return body, attempts, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	res := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}
