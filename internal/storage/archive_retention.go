package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ArchivePrefix is the key prefix every archived report lives under
const ArchivePrefix = "reports/"

// ObjectStore is the subset of StorageService the retention job needs
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DeleteByKeys(ctx context.Context, keys []string) (int, error)
}

// RetentionConfig holds configuration for the archive retention job
type RetentionConfig struct {
	Interval  time.Duration // Interval between runs (default: 24 hours)
	Retention time.Duration // Objects older than this are deleted
}

// RetentionResult holds the result of a retention run
type RetentionResult struct {
	StartTime    time.Time
	EndTime      time.Time
	FilesScanned int
	Expired      int
	Deleted      int
	BytesFreed   int64
	Errors       []string
}

// RetentionJob periodically deletes archived report exports that are older
// than the configured retention
type RetentionJob struct {
	store    ObjectStore
	config   RetentionConfig
	logger   *slog.Logger
	now      func() time.Time
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	last     *RetentionResult
}

// NewRetentionJob creates a new retention job
func NewRetentionJob(store ObjectStore, config RetentionConfig, logger *slog.Logger) *RetentionJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	return &RetentionJob{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Start begins the periodic job. A zero retention disables it.
func (j *RetentionJob) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return fmt.Errorf("retention job is already running")
	}

	if j.config.Retention <= 0 {
		j.logger.Info("archive retention disabled")
		return nil
	}

	j.running = true
	j.stopChan = make(chan struct{})
	j.wg.Add(1)

	go j.run()

	j.logger.Info("archive retention job started", "interval", j.config.Interval, "retention", j.config.Retention)
	return nil
}

// Stop stops the periodic job and waits for an in-flight run to finish
func (j *RetentionJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	close(j.stopChan)
	j.mu.Unlock()

	j.wg.Wait()
	j.logger.Info("archive retention job stopped")
}

// LastResult returns the result of the last run
func (j *RetentionJob) LastResult() *RetentionResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

func (j *RetentionJob) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			result := j.RunNow(ctx)
			cancel()

			j.logger.Info("archive retention completed",
				"scanned", result.FilesScanned,
				"expired", result.Expired,
				"deleted", result.Deleted,
				"bytes_freed", result.BytesFreed,
				"errors", len(result.Errors),
				"duration", result.EndTime.Sub(result.StartTime),
			)
		case <-j.stopChan:
			return
		}
	}
}

// RunNow performs a single retention run
func (j *RetentionJob) RunNow(ctx context.Context) *RetentionResult {
	result := &RetentionResult{StartTime: j.now()}
	cutoff := result.StartTime.Add(-j.config.Retention)

	objects, err := j.store.ListObjects(ctx, ArchivePrefix)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
	result.FilesScanned = len(objects)

	var keys []string
	sizes := make(map[string]int64)
	for _, obj := range objects {
		if obj.LastModified.IsZero() || !obj.LastModified.Before(cutoff) {
			continue
		}
		keys = append(keys, obj.Key)
		sizes[obj.Key] = obj.Size
	}
	result.Expired = len(keys)

	if len(keys) > 0 {
		deleted, err := j.store.DeleteByKeys(ctx, keys)
		result.Deleted = deleted
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		// Sizes are exact only when the whole set was removed
		if deleted == len(keys) {
			for _, size := range sizes {
				result.BytesFreed += size
			}
		}
	}

	result.EndTime = j.now()

	j.mu.Lock()
	j.last = result
	j.mu.Unlock()

	return result
}
