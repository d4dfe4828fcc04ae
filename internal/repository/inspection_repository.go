package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/dlp-inspect/internal/logging"
)

// ErrLogNotFound reports that no inspection log matches the requested id and owner.
var ErrLogNotFound = errors.New("inspection log not found")

// InspectionLog is the persisted audit record of one inspection request.
// Findings holds the findings serialized as JSON; SHA1Hash fingerprints the
// inspected image for duplicate detection.
type InspectionLog struct {
	ID                  uint      `gorm:"primaryKey"`
	RequestID           string    `gorm:"column:request_id;uniqueIndex;size:64"`
	UserID              string    `gorm:"column:user_id;size:64"`
	Project             string    `gorm:"column:project;size:128"`
	InfoTypes           string    `gorm:"column:info_types;type:text"`
	IncludeQuote        bool      `gorm:"column:include_quote"`
	FindingCount        int       `gorm:"column:finding_count"`
	Findings            string    `gorm:"column:findings;type:text"`
	SHA1Hash            string    `gorm:"column:sha1_hash;index;size:40"`
	ProcessingLatencyMs int64     `gorm:"column:processing_latency_ms"`
	CreatedAt           time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (InspectionLog) TableName() string {
	return "inspection_logs"
}

// MetricsAggregation holds the raw aggregates computed by the database.
type MetricsAggregation struct {
	TotalCount                 int64
	WithFindingsCount          int64
	AverageFindings            float64
	AverageProcessingLatencyMs float64
}

// InspectionRepository provides persistence APIs for inspection logs.
type InspectionRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewInspectionRepository creates a new repository instance.
func NewInspectionRepository(db *gorm.DB, logger *zap.Logger) *InspectionRepository {
	return &InspectionRepository{
		db:             db,
		logger:         logger.Named("inspection_repository"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// AutoMigrate ensures the schema is available.
func (r *InspectionRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&InspectionLog{})
}

// SaveLog persists an inspection log entry.
func (r *InspectionRepository) SaveLog(ctx context.Context, log *InspectionLog) error {
	return r.executeWithRetry(ctx, "repository.save_log", log.RequestID, func() error {
		return r.db.WithContext(ctx).Create(log).Error
	})
}

// FindByRequestIDAndUser retrieves an inspection log matching the request and owner.
func (r *InspectionRepository) FindByRequestIDAndUser(ctx context.Context, requestID, userID string) (*InspectionLog, error) {
	var log InspectionLog
	err := r.executeWithRetry(ctx, "repository.find_by_request_id", requestID, func() error {
		return r.db.WithContext(ctx).First(&log, "request_id = ? AND user_id = ?", requestID, userID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindDuplicatesByHash lists the caller's other inspection logs sharing an
// image fingerprint, newest first.
func (r *InspectionRepository) FindDuplicatesByHash(ctx context.Context, userID, hash, excludeRequestID string) ([]*InspectionLog, error) {
	var logs []*InspectionLog
	err := r.executeWithRetry(ctx, "repository.find_duplicates_by_hash", excludeRequestID, func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND sha1_hash = ? AND request_id <> ?", userID, hash, excludeRequestID).
			Order("created_at DESC").
			Find(&logs).Error
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// AggregateMetrics computes the aggregate inspection counters in one query.
func (r *InspectionRepository) AggregateMetrics(ctx context.Context) (*MetricsAggregation, error) {
	var agg MetricsAggregation
	err := r.executeWithRetry(ctx, "repository.aggregate_metrics", "", func() error {
		row := r.db.WithContext(ctx).
			Model(&InspectionLog{}).
			Select("COUNT(*)," +
				"COALESCE(SUM(CASE WHEN finding_count > 0 THEN 1 ELSE 0 END), 0)," +
				"COALESCE(AVG(finding_count), 0)," +
				"COALESCE(AVG(processing_latency_ms), 0)").
			Row()
		return row.Scan(&agg.TotalCount, &agg.WithFindingsCount, &agg.AverageFindings, &agg.AverageProcessingLatencyMs)
	})
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// executeWithRetry runs fn, retrying transient failures with bounded
// exponential backoff. The final error is wrapped with operation metadata.
func (r *InspectionRepository) executeWithRetry(ctx context.Context, operation, requestID string, fn func() error) error {
	if r.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := r.initialBackoff
	opLogger := logging.WithOperation(r.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < r.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= r.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("database operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == r.retryAttempts-1 {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				opLogger.Error("database operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			}
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient database error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
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
