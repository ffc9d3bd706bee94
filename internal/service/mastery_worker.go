package service

import (
	"context"
	"encoding/json"
	"time"

	"edu_assessment_backend/pkg/logger"
	"edu_assessment_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	masteryQueueKey   = "mastery:recompute"
	masteryMaxRetries = 3
)

// masteryJob is the queue payload for one recompute request.
type masteryJob struct {
	UserID    uint `json:"userId"`
	AttemptID uint `json:"attemptId"`
	Retries   int  `json:"retries"`
}

// MasteryWorker decouples mastery recomputation from the submit path.
// Jobs go through a redis list; when redis is unavailable the job runs in
// a goroutine instead, so grading never waits on aggregation either way.
type MasteryWorker struct {
	Redis   *redis.Client
	Mastery *MasteryService
}

func NewMasteryWorker(rdb *redis.Client, mastery *MasteryService) *MasteryWorker {
	return &MasteryWorker{Redis: rdb, Mastery: mastery}
}

// TriggerAttempt enqueues a recompute for the attempt's user. Failures are
// absorbed: the submit flow must not observe them.
func (w *MasteryWorker) TriggerAttempt(userID, attemptID uint) {
	job := masteryJob{UserID: userID, AttemptID: attemptID}
	if err := w.enqueue(job); err != nil {
		logger.Log.Warn("mastery enqueue failed, running inline",
			zap.Uint("attemptId", attemptID), zap.Error(err))
		go w.process(job)
	}
}

func (w *MasteryWorker) enqueue(job masteryJob) error {
	if w.Redis == nil {
		return redis.ErrClosed
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return w.Redis.LPush(ctx, masteryQueueKey, payload).Err()
}

// Run consumes the queue until ctx is cancelled. Intended to be started
// once as a background goroutine during app boot.
func (w *MasteryWorker) Run(ctx context.Context) {
	if w.Redis == nil {
		logger.Log.Warn("mastery worker disabled, redis not configured")
		return
	}
	logger.Log.Info("mastery worker started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("mastery worker stopped")
			return
		default:
		}

		res, err := w.Redis.BRPop(ctx, 5*time.Second, masteryQueueKey).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			logger.Log.Error("mastery queue read failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var job masteryJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			logger.Log.Error("dropping malformed mastery job", zap.Error(err))
			continue
		}
		w.process(job)
	}
}

// process runs one recompute, re-enqueueing on failure up to the retry
// cap. The job is dropped after that; a later graded attempt for the same
// user repairs the rows because recomputation reads full history.
func (w *MasteryWorker) process(job masteryJob) {
	start := time.Now()
	err := w.Mastery.UpdateMasteryAfterAttempt(job.UserID, job.AttemptID)
	monitoring.ObserveMasteryRecompute(time.Since(start), err == nil)
	if err == nil {
		return
	}

	job.Retries++
	if job.Retries > masteryMaxRetries {
		logger.Log.Error("mastery job dropped after retries",
			zap.Uint("userId", job.UserID),
			zap.Uint("attemptId", job.AttemptID))
		return
	}
	logger.Log.Warn("mastery job failed, re-enqueueing",
		zap.Uint("attemptId", job.AttemptID),
		zap.Int("retries", job.Retries),
		zap.Error(err))
	if err := w.enqueue(job); err != nil {
		logger.Log.Error("mastery re-enqueue failed", zap.Error(err))
	}
}
