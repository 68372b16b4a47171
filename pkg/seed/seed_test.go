package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/internal/config"
	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/services"
	"github.com/retailops/shiftbalance/pkg/db"
)

func TestSeed_WritesFullDataset(t *testing.T) {
	memory := db.NewMemory()

	result, err := Seed(context.Background(), memory, zap.NewNop(), "2024-01-15")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stores)
	assert.Equal(t, 10, result.Employees)
	assert.Equal(t, "2024-01-15", result.BaseDate)

	shifts, err := memory.GetShifts(context.Background())
	require.NoError(t, err)
	assert.Len(t, shifts, result.Shifts)

	locked := 0
	for _, s := range shifts {
		if s.Locked {
			locked++
			assert.NotEmpty(t, s.LockReason)
		}
	}
	assert.Equal(t, 1, locked)
}

func TestSeed_RejectsBadBaseDate(t *testing.T) {
	_, err := Seed(context.Background(), db.NewMemory(), zap.NewNop(), "15/01/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base date")
}

// The dataset carries one of each planted problem so a scan over it
// exercises every detection rule.
func TestSeed_PlantedConflictsAreDetectable(t *testing.T) {
	memory := db.NewMemory()
	_, err := Seed(context.Background(), memory, zap.NewNop(), "2024-01-15")
	require.NoError(t, err)

	scan, err := services.ScanConflicts(context.Background(), memory, config.Default(), zap.NewNop())
	require.NoError(t, err)

	byType := make(map[model.ConflictType][]model.Conflict)
	for _, c := range scan.Conflicts {
		byType[c.Type] = append(byType[c.Type], c)
	}

	require.NotEmpty(t, byType[model.ConflictOverlap], "emp-02's Tuesday double booking")
	assert.Equal(t, "emp-02", byType[model.ConflictOverlap][0].EmployeeID)

	require.NotEmpty(t, byType[model.ConflictRestViolation], "emp-03's 9h turnaround")
	assert.Equal(t, "emp-03", byType[model.ConflictRestViolation][0].EmployeeID)

	found := false
	for _, c := range byType[model.ConflictOvertime] {
		if c.EmployeeID == "emp-04" {
			found = true
		}
	}
	assert.True(t, found, "emp-04's stacked long shifts must trip overtime")
}
