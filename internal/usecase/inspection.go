package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/dlp-inspect/internal/inspector"
	"github.com/example/dlp-inspect/internal/logging"
	"github.com/example/dlp-inspect/internal/repository"
)

// InspectionRepository defines the persistence operations needed by the use case.
type InspectionRepository interface {
	SaveLog(ctx context.Context, log *repository.InspectionLog) error
	FindByRequestIDAndUser(ctx context.Context, requestID, userID string) (*repository.InspectionLog, error)
	FindDuplicatesByHash(ctx context.Context, userID, hash, excludeRequestID string) ([]*repository.InspectionLog, error)
	AggregateMetrics(ctx context.Context) (*repository.MetricsAggregation, error)
}

// InspectionUseCase encapsulates business logic for the inspection flow:
// cache the in-flight marker, run the remote inspection, persist the audit
// log, and cache the outcome. The remote call itself is never retried.
type InspectionUseCase struct {
	repo           InspectionRepository
	cache          Cache
	client         inspector.Client
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// cachedInspection is the serialized form of an outcome stored in Redis.
type cachedInspection struct {
	RequestID    string          `json:"request_id"`
	UserID       string          `json:"user_id"`
	Project      string          `json:"project"`
	InfoTypes    string          `json:"info_types"`
	IncludeQuote bool            `json:"include_quote"`
	FindingCount int             `json:"finding_count"`
	Findings     json.RawMessage `json:"findings"`
	Hash         string          `json:"sha1_hash"`
	LatencyMs    int64           `json:"processing_latency_ms"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DuplicateReport pairs an inspection log with the caller's other logs that
// share the same image fingerprint.
type DuplicateReport struct {
	Request    *repository.InspectionLog
	Duplicates []*repository.InspectionLog
}

// NewInspectionUseCase constructs a new use case instance.
func NewInspectionUseCase(repo InspectionRepository, cache Cache, client inspector.Client, logger *zap.Logger) *InspectionUseCase {
	return &InspectionUseCase{
		repo:           repo,
		cache:          cache,
		client:         client,
		logger:         logger.Named("inspection_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// InspectImage orchestrates one content inspection: caching, the remote call,
// and audit persistence. A remote failure aborts the whole operation; nothing
// is persisted and no partial result is returned.
func (uc *InspectionUseCase) InspectImage(ctx context.Context, userID string, req *inspector.Request) (string, *inspector.Result, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.inspect_image", requestID)

	cacheKey := inspectionCacheKey(requestID)
	if err := uc.withRedisRetry(ctx, requestID, "cache.set.processing", func() error {
		return uc.cache.Set(ctx, cacheKey, "processing", processingTTL)
	}); err != nil {
		opLogger.Error("failed to set processing flag", zap.Error(err))
		return "", nil, err
	}

	started := time.Now()
	result, err := uc.client.Inspect(ctx, req)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.inspect_content", requestID, err)
		opLogger.Error("remote inspection failed", zap.Error(wrapped))
		return "", nil, wrapped
	}
	latencyMs := time.Since(started).Milliseconds()

	findingsJSON, err := json.Marshal(result.Findings)
	if err != nil {
		opLogger.Error("failed to serialize findings", zap.Error(err))
		return "", nil, err
	}

	hash := sha1.Sum(req.ImageBytes)
	hashHex := hex.EncodeToString(hash[:])
	log := &repository.InspectionLog{
		RequestID:           requestID,
		UserID:              userID,
		Project:             req.Project,
		InfoTypes:           strings.Join(req.InfoTypes, ","),
		IncludeQuote:        req.IncludeQuote,
		FindingCount:        len(result.Findings),
		Findings:            string(findingsJSON),
		SHA1Hash:            hashHex,
		ProcessingLatencyMs: latencyMs,
		CreatedAt:           time.Now().UTC(),
	}
	if err := uc.repo.SaveLog(ctx, log); err != nil {
		wrapped := logging.NewOperationError("usecase.save_log", requestID, err)
		opLogger.Error("failed to persist inspection log", zap.Error(wrapped))
		return "", nil, wrapped
	}

	cached := cachedInspection{
		RequestID:    requestID,
		UserID:       userID,
		Project:      log.Project,
		InfoTypes:    log.InfoTypes,
		IncludeQuote: log.IncludeQuote,
		FindingCount: log.FindingCount,
		Findings:     json.RawMessage(findingsJSON),
		Hash:         log.SHA1Hash,
		LatencyMs:    log.ProcessingLatencyMs,
		CreatedAt:    log.CreatedAt,
	}

	serialized, err := json.Marshal(cached)
	if err != nil {
		opLogger.Error("failed to serialize inspection result", zap.Error(err))
		return "", nil, err
	}

	if err := uc.withRedisRetry(ctx, requestID, "cache.set.result", func() error {
		return uc.cache.Set(ctx, cacheKey, string(serialized), resultTTL)
	}); err != nil {
		opLogger.Error("failed to cache inspection result", zap.Error(err))
		return "", nil, err
	}

	return requestID, result, nil
}

// GetResult retrieves a cached inspection outcome or loads it from persistence.
// Results are scoped to their owner.
func (uc *InspectionUseCase) GetResult(ctx context.Context, userID, requestID string) (*repository.InspectionLog, error) {
	cacheKey := inspectionCacheKey(requestID)
	if cached, err := uc.withRedisGet(ctx, requestID, "cache.get.result", cacheKey); err == nil {
		var payload cachedInspection
		if err := json.Unmarshal([]byte(cached), &payload); err != nil {
			logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to decode cached result", zap.Error(err))
		} else if payload.UserID == userID {
			return &repository.InspectionLog{
				RequestID:           payload.RequestID,
				UserID:              payload.UserID,
				Project:             payload.Project,
				InfoTypes:           payload.InfoTypes,
				IncludeQuote:        payload.IncludeQuote,
				FindingCount:        payload.FindingCount,
				Findings:            string(payload.Findings),
				SHA1Hash:            payload.Hash,
				ProcessingLatencyMs: payload.LatencyMs,
				CreatedAt:           payload.CreatedAt,
			}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to read cache", zap.Error(err))
	}

	return uc.repo.FindByRequestIDAndUser(ctx, requestID, userID)
}

// GetDuplicateReport lists the caller's earlier inspections of the same image.
func (uc *InspectionUseCase) GetDuplicateReport(ctx context.Context, userID, requestID string) (*DuplicateReport, error) {
	log, err := uc.repo.FindByRequestIDAndUser(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}

	duplicates, err := uc.repo.FindDuplicatesByHash(ctx, userID, log.SHA1Hash, log.RequestID)
	if err != nil {
		return nil, err
	}

	return &DuplicateReport{
		Request:    log,
		Duplicates: duplicates,
	}, nil
}

func (uc *InspectionUseCase) withRedisRetry(ctx context.Context, requestID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("redis operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == uc.retryAttempts-1 {
			if !errors.Is(err, redis.Nil) {
				opLogger.Error("redis operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			}
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}

func (uc *InspectionUseCase) withRedisGet(ctx context.Context, requestID, operation, cacheKey string) (string, error) {
	var result string
	err := uc.withRedisRetry(ctx, requestID, operation, func() error {
		value, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
