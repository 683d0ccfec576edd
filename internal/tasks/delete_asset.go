package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// DeleteAssetTask removes an uploaded asset that no record references.
type DeleteAssetTask struct {
	Class    storage.AssetClass `json:"class"`
	PublicID string             `json:"public_id"`
}

// Config returns the queue configuration for asset deletion tasks.
func (t DeleteAssetTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "delete_asset",
		MaxAttempts: 5,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// DeleteAssetProcessor creates a processor function for DeleteAssetTask.
func DeleteAssetProcessor(client storage.Client, logger *zap.Logger) backlite.QueueProcessor[DeleteAssetTask] {
	return func(ctx context.Context, task DeleteAssetTask) error {
		if err := client.Delete(ctx, task.Class, task.PublicID); err != nil {
			return fmt.Errorf("delete asset %s: %w", task.PublicID, err)
		}
		logger.Info("deleted orphaned asset",
			zap.String("class", string(task.Class)),
			zap.String("public_id", task.PublicID),
		)
		return nil
	}
}

// NewDeleteAssetQueue creates a backlite queue for asset deletion tasks.
func NewDeleteAssetQueue(client storage.Client, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(DeleteAssetProcessor(client, logger))
}

// Enqueuer adds tasks to a queue.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// QueuedAssetRemover schedules orphaned assets for deletion on the task
// queue. If enqueueing fails the assets are handed to fallback instead.
type QueuedAssetRemover struct {
	queue    Enqueuer
	fallback services.AssetRemover
	logger   *zap.Logger
}

func NewQueuedAssetRemover(queue Enqueuer, fallback services.AssetRemover, logger *zap.Logger) *QueuedAssetRemover {
	return &QueuedAssetRemover{queue: queue, fallback: fallback, logger: logger}
}

func (r *QueuedAssetRemover) RemoveAssets(ctx context.Context, assets ...storage.Asset) {
	if len(assets) == 0 {
		return
	}

	tasks := make([]backlite.Task, 0, len(assets))
	for _, asset := range assets {
		tasks = append(tasks, DeleteAssetTask{Class: asset.Class, PublicID: asset.PublicID})
	}

	if _, err := r.queue.Add(tasks...).Ctx(ctx).Save(); err != nil {
		r.logger.Warn("failed to enqueue asset deletion, removing inline",
			zap.Int("assets", len(assets)),
			zap.Error(err),
		)
		r.fallback.RemoveAssets(ctx, assets...)
	}
}
