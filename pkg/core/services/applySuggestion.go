package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/internal/config"
	"github.com/retailops/shiftbalance/pkg/core/executor"
	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/prevalidate"
	"github.com/retailops/shiftbalance/pkg/core/snapshot"
	"github.com/retailops/shiftbalance/pkg/db"
)

// ApplySuggestionResult contains the execution outcome and, when state was
// mutated, the snapshot taken beforehand
type ApplySuggestionResult struct {
	Result     *model.BalancingResult
	SnapshotID string
	DryRun     bool
}

// ApplyBatchResult is the batch variant of ApplySuggestionResult
type ApplyBatchResult struct {
	Batch      *model.BatchResult
	SnapshotID string
	DryRun     bool
}

// ApplySuggestion validates and executes one balancing suggestion.
// A snapshot of the current shift state is taken before mutation so the
// change can be rolled back. If dryRun is true the change is executed
// against a throwaway copy and nothing is persisted.
func ApplySuggestion(
	ctx context.Context,
	database EntityStore,
	snapshots *snapshot.Manager,
	cfg *config.Config,
	logger *zap.Logger,
	sug *model.Suggestion,
	dryRun bool,
) (*ApplySuggestionResult, error) {
	logger.Debug("Starting applySuggestion",
		zap.String("suggestion", sug.ID),
		zap.String("type", string(sug.Type)),
		zap.Bool("dry_run", dryRun))

	vctx, err := loadEntities(ctx, database, logger)
	if err != nil {
		return nil, err
	}

	exec, snapshotID, err := buildExecutor(database, snapshots, cfg, logger, vctx, dryRun,
		fmt.Sprintf("before applying %s suggestion", sug.Type), sug.ID)
	if err != nil {
		return nil, err
	}

	result := exec.Apply(ctx, sug, vctx)

	if dryRun {
		logger.Info("Dry run mode - changes not persisted", zap.Bool("would_succeed", result.Success))
	}

	return &ApplySuggestionResult{
		Result:     result,
		SnapshotID: snapshotID,
		DryRun:     dryRun,
	}, nil
}

// ApplySuggestions executes a batch of suggestions sequentially under a
// single pre-apply snapshot
func ApplySuggestions(
	ctx context.Context,
	database EntityStore,
	snapshots *snapshot.Manager,
	cfg *config.Config,
	logger *zap.Logger,
	suggestions []*model.Suggestion,
	dryRun bool,
) (*ApplyBatchResult, error) {
	logger.Debug("Starting applySuggestions",
		zap.Int("count", len(suggestions)),
		zap.Bool("dry_run", dryRun))

	vctx, err := loadEntities(ctx, database, logger)
	if err != nil {
		return nil, err
	}

	exec, snapshotID, err := buildExecutor(database, snapshots, cfg, logger, vctx, dryRun,
		"before applying suggestion batch", "")
	if err != nil {
		return nil, err
	}

	batch := exec.ApplyBatch(ctx, suggestions, vctx)

	if dryRun {
		logger.Info("Dry run mode - changes not persisted",
			zap.Int("would_succeed", batch.Succeeded),
			zap.Int("would_fail", batch.Failed))
	}

	return &ApplyBatchResult{
		Batch:      batch,
		SnapshotID: snapshotID,
		DryRun:     dryRun,
	}, nil
}

// buildExecutor wires a validator and writer for the given snapshot of
// entities. In dry-run mode the writer targets an in-memory copy and no
// snapshot is recorded.
func buildExecutor(
	database EntityStore,
	snapshots *snapshot.Manager,
	cfg *config.Config,
	logger *zap.Logger,
	vctx *prevalidate.Context,
	dryRun bool,
	description, suggestionID string,
) (*executor.Executor, string, error) {
	validator := prevalidate.New(cfg.ValidationCacheSize)

	var target EntityStore = database
	snapshotID := ""
	if dryRun {
		memory := db.NewMemory()
		records := make([]db.Shift, len(vctx.Shifts))
		for i, s := range vctx.Shifts {
			records[i] = convertToShiftRecord(s)
		}
		if err := memory.InsertShifts(records); err != nil {
			return nil, "", fmt.Errorf("failed to stage dry-run copy: %w", err)
		}
		target = memory
	} else if snapshots != nil {
		snap := snapshots.Create(description, "apply_suggestion", suggestionID, vctx.Shifts)
		snapshotID = snap.ID
		logger.Info("Snapshot taken", zap.String("snapshot", snap.ID))
	}

	writer := newStoreWriter(target, vctx.Shifts)
	return executor.New(writer, validator, logger), snapshotID, nil
}
