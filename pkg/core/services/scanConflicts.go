package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/internal/config"
	"github.com/retailops/shiftbalance/pkg/core/detector"
	"github.com/retailops/shiftbalance/pkg/core/model"
)

// ScanConflictsResult contains the detection results
type ScanConflictsResult struct {
	Conflicts     []model.Conflict
	EmployeeCount int
	StoreCount    int
	ShiftCount    int
	BySeverity    map[model.Severity]int
}

// ScanConflicts loads the entity snapshot and runs the full conflict rule set
func ScanConflicts(
	ctx context.Context,
	database EntityReader,
	cfg *config.Config,
	logger *zap.Logger,
) (*ScanConflictsResult, error) {
	logger.Debug("Starting scanConflicts")

	vctx, err := loadEntities(ctx, database, logger)
	if err != nil {
		return nil, err
	}

	requiredStaff, err := compileRequiredStaff(cfg, time.Now(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to compile staffing overrides: %w", err)
	}

	logger.Info("Running conflict detection",
		zap.Int("employees", len(vctx.Employees)),
		zap.Int("stores", len(vctx.Stores)),
		zap.Int("shifts", len(vctx.Shifts)))

	conflicts := detector.New().Detect(&detector.Input{
		Employees:     vctx.Employees,
		Stores:        vctx.Stores,
		Shifts:        vctx.Shifts,
		RequiredStaff: requiredStaff,
	})

	bySeverity := make(map[model.Severity]int)
	for _, c := range conflicts {
		bySeverity[c.Severity]++
	}

	logger.Info("Conflict detection completed",
		zap.Int("conflicts", len(conflicts)),
		zap.Int("critical", bySeverity[model.SeverityCritical]),
		zap.Int("high", bySeverity[model.SeverityHigh]))

	return &ScanConflictsResult{
		Conflicts:     conflicts,
		EmployeeCount: len(vctx.Employees),
		StoreCount:    len(vctx.Stores),
		ShiftCount:    len(vctx.Shifts),
		BySeverity:    bySeverity,
	}, nil
}
