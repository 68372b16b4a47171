package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/internal/config"
	"github.com/retailops/shiftbalance/pkg/core/balancer"
	"github.com/retailops/shiftbalance/pkg/core/model"
)

// BalanceWorkloadResult contains the workload metrics and ranked suggestions
type BalanceWorkloadResult struct {
	Metrics     balancer.Metrics
	Suggestions []model.Suggestion
}

// BalanceWorkload computes workload metrics and balancing suggestions for
// the current schedule. storeFilter restricts the analysis to one store when
// non-empty.
func BalanceWorkload(
	ctx context.Context,
	database EntityReader,
	cfg *config.Config,
	logger *zap.Logger,
	storeFilter string,
) (*BalanceWorkloadResult, error) {
	logger.Debug("Starting balanceWorkload", zap.String("store_filter", storeFilter))

	vctx, err := loadEntities(ctx, database, logger)
	if err != nil {
		return nil, err
	}

	report := balancer.Compute(&balancer.Input{
		Employees:       vctx.Employees,
		Stores:          vctx.Stores,
		Shifts:          vctx.Shifts,
		StoreFilter:     storeFilter,
		DefaultContract: cfg.DefaultContractHours,
	})

	autoApplicable := 0
	for _, sug := range report.Suggestions {
		if sug.AutoApplicable {
			autoApplicable++
		}
	}

	logger.Info("Workload balancing completed",
		zap.Float64("equity_score", report.Metrics.EquityScore),
		zap.String("equity_rating", string(report.Metrics.Rating)),
		zap.Int("suggestions", len(report.Suggestions)),
		zap.Int("auto_applicable", autoApplicable))

	return &BalanceWorkloadResult{
		Metrics:     report.Metrics,
		Suggestions: report.Suggestions,
	}, nil
}
