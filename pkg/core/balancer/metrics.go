package balancer

import "math"

// StoreClassification buckets a store's workload against the fleet average
type StoreClassification string

const (
	StoreUnderstaffed StoreClassification = "understaffed"
	StoreOptimal      StoreClassification = "optimal"
	StoreOverstaffed  StoreClassification = "overstaffed"
)

// storeDeviationThreshold classifies a store once its deviation exceeds
// this share of the cross-store average
const storeDeviationThreshold = 0.25

// EquityRating grades the overall hour distribution
type EquityRating string

const (
	RatingExcellent EquityRating = "excellent"
	RatingGood      EquityRating = "good"
	RatingFair      EquityRating = "fair"
	RatingPoor      EquityRating = "poor"
)

// EmployeeLoad is one employee's workload position for the period
type EmployeeLoad struct {
	EmployeeID       string
	StoreID          string
	TotalHours       float64
	Ceiling          float64
	Floor            float64
	Deviation        float64 // TotalHours - Ceiling
	DeviationPercent float64 // Deviation / Ceiling * 100
}

// StoreLoad is one store's workload position for the period
type StoreLoad struct {
	StoreID        string
	TotalHours     float64
	Deviation      float64 // TotalHours - cross-store average
	Classification StoreClassification
}

// Metrics is the equity picture for one balancing period
type Metrics struct {
	EmployeeLoads  []EmployeeLoad
	StoreLoads     []StoreLoad
	EquityScore    float64 // 0-100, higher is more even
	PotentialScore float64 // EquityScore plus the heuristic uplift, capped at 100
	Rating         EquityRating
}

// equityUplift is the fixed heuristic headroom assumed to be reachable by
// applying the generated suggestions
const equityUplift = 15.0

func computeMetrics(s *scope) Metrics {
	m := Metrics{}

	// Per-employee loads
	for _, e := range s.employees {
		total := 0.0
		for _, shift := range s.shiftsByEmployee[e.ID] {
			total += shift.Hours()
		}
		ceiling := s.ceilings[e.ID]
		load := EmployeeLoad{
			EmployeeID: e.ID,
			StoreID:    e.StoreID,
			TotalHours: total,
			Ceiling:    ceiling,
			Floor:      s.floors[e.ID],
			Deviation:  total - ceiling,
		}
		if ceiling > 0 {
			load.DeviationPercent = load.Deviation / ceiling * 100
		}
		m.EmployeeLoads = append(m.EmployeeLoads, load)
	}

	// Per-store loads against the cross-store average
	storeTotals := make(map[string]float64, len(s.stores))
	for _, shift := range s.shifts {
		storeTotals[shift.StoreID] += shift.Hours()
	}

	average := 0.0
	if len(s.stores) > 0 {
		sum := 0.0
		for _, store := range s.stores {
			sum += storeTotals[store.ID]
		}
		average = sum / float64(len(s.stores))
	}

	for _, store := range s.stores {
		load := StoreLoad{
			StoreID:        store.ID,
			TotalHours:     storeTotals[store.ID],
			Deviation:      storeTotals[store.ID] - average,
			Classification: StoreOptimal,
		}
		if math.Abs(load.Deviation) > storeDeviationThreshold*average {
			if load.Deviation < 0 {
				load.Classification = StoreUnderstaffed
			} else {
				load.Classification = StoreOverstaffed
			}
		}
		m.StoreLoads = append(m.StoreLoads, load)
	}

	m.EquityScore = equityScore(m.EmployeeLoads)
	m.PotentialScore = math.Min(m.EquityScore+equityUplift, 100)
	m.Rating = rating(m.EquityScore)

	return m
}

// equityScore is 100 minus the coefficient of variation of employee hours,
// clamped to [0, 100]. A perfectly even distribution scores 100.
func equityScore(loads []EmployeeLoad) float64 {
	if len(loads) == 0 {
		return 100
	}

	mean := 0.0
	for _, l := range loads {
		mean += l.TotalHours
	}
	mean /= float64(len(loads))
	if mean <= 0 {
		return 100
	}

	variance := 0.0
	for _, l := range loads {
		variance += math.Pow(l.TotalHours-mean, 2)
	}
	variance /= float64(len(loads))
	stddev := math.Sqrt(variance)

	score := 100 - (stddev/mean)*100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func rating(score float64) EquityRating {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 60:
		return RatingFair
	default:
		return RatingPoor
	}
}

// hourVariance computes the population variance of the given loads' hours
func hourVariance(loads []EmployeeLoad) float64 {
	if len(loads) == 0 {
		return 0
	}
	mean := 0.0
	for _, l := range loads {
		mean += l.TotalHours
	}
	mean /= float64(len(loads))

	variance := 0.0
	for _, l := range loads {
		variance += math.Pow(l.TotalHours-mean, 2)
	}
	return variance / float64(len(loads))
}
