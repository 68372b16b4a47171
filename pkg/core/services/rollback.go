package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/pkg/core/snapshot"
)

// Rollback restores shift state from the named snapshot, or from the most
// recent one when snapshotID is empty
func Rollback(
	ctx context.Context,
	database EntityStore,
	snapshots *snapshot.Manager,
	logger *zap.Logger,
	snapshotID string,
) (*snapshot.RollbackOperation, error) {
	if snapshotID == "" {
		latest := snapshots.Latest()
		if latest == nil {
			return nil, fmt.Errorf("no snapshots available to roll back to")
		}
		snapshotID = latest.ID
	}
	logger.Debug("Starting rollback", zap.String("snapshot", snapshotID))

	vctx, err := loadEntities(ctx, database, logger)
	if err != nil {
		return nil, err
	}

	writer := newStoreWriter(database, vctx.Shifts)
	op := snapshots.Rollback(ctx, snapshotID, vctx.Shifts, writer)

	if op.Success {
		logger.Info("Rollback completed",
			zap.String("snapshot", snapshotID),
			zap.Int("restored_shifts", len(op.RestoredShifts)))
	} else {
		logger.Warn("Rollback failed",
			zap.String("snapshot", snapshotID),
			zap.Strings("errors", op.Errors))
	}

	return op, nil
}
