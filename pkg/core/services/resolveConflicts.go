package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/internal/config"
	"github.com/retailops/shiftbalance/pkg/core/detector"
	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/resolver"
	"github.com/retailops/shiftbalance/pkg/core/snapshot"
)

// ResolveConflictsResult contains the resolution outcomes
type ResolveConflictsResult struct {
	Detected   int
	Selected   int
	Batch      *resolver.BatchResult
	SnapshotID string
}

// ResolveConflicts detects current conflicts, selects those at or above the
// minimum severity (optionally narrowed to explicit conflict ids) and
// resolves each with its best strategy. A snapshot is taken before any
// mutation.
func ResolveConflicts(
	ctx context.Context,
	database EntityStore,
	notifier resolver.Notifier,
	snapshots *snapshot.Manager,
	cfg *config.Config,
	logger *zap.Logger,
	minSeverity model.Severity,
	conflictIDs []string,
) (*ResolveConflictsResult, error) {
	logger.Debug("Starting resolveConflicts",
		zap.String("min_severity", string(minSeverity)),
		zap.Strings("conflict_ids", conflictIDs))

	vctx, err := loadEntities(ctx, database, logger)
	if err != nil {
		return nil, err
	}

	requiredStaff, err := compileRequiredStaff(cfg, time.Now(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to compile staffing overrides: %w", err)
	}

	conflicts := detector.New().Detect(&detector.Input{
		Employees:     vctx.Employees,
		Stores:        vctx.Stores,
		Shifts:        vctx.Shifts,
		RequiredStaff: requiredStaff,
	})
	logger.Info("Detected conflicts", zap.Int("count", len(conflicts)))

	selected := selectConflicts(conflicts, minSeverity, conflictIDs)
	logger.Info("Selected conflicts for resolution", zap.Int("count", len(selected)))

	if len(selected) == 0 {
		return &ResolveConflictsResult{Detected: len(conflicts)}, nil
	}

	snapshotID := ""
	if snapshots != nil {
		snap := snapshots.Create("before conflict resolution", "resolve_conflicts", "", vctx.Shifts)
		snapshotID = snap.ID
		logger.Info("Snapshot taken", zap.String("snapshot", snap.ID))
	}

	writer := newStoreWriter(database, vctx.Shifts)
	batch := resolver.New(writer, notifier, logger).ResolveBatch(ctx, selected, vctx)

	return &ResolveConflictsResult{
		Detected:   len(conflicts),
		Selected:   len(selected),
		Batch:      batch,
		SnapshotID: snapshotID,
	}, nil
}

// selectConflicts filters by explicit ids when given, otherwise by minimum
// severity
func selectConflicts(conflicts []model.Conflict, minSeverity model.Severity, conflictIDs []string) []*model.Conflict {
	var selected []*model.Conflict

	if len(conflictIDs) > 0 {
		wanted := make(map[string]bool, len(conflictIDs))
		for _, id := range conflictIDs {
			wanted[id] = true
		}
		for i := range conflicts {
			if wanted[conflicts[i].ID] {
				selected = append(selected, &conflicts[i])
			}
		}
		return selected
	}

	maxRank := model.SeverityRank(model.SeverityLow)
	if minSeverity != "" {
		maxRank = model.SeverityRank(minSeverity)
	}
	for i := range conflicts {
		if model.SeverityRank(conflicts[i].Severity) <= maxRank {
			selected = append(selected, &conflicts[i])
		}
	}
	return selected
}
