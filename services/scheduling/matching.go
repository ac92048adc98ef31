package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"voltserve/models"
)

// minEligibleProficiency is the skill floor for a technician to be matched to
// a category.
const minEligibleProficiency = 3

// RankTechnicians returns the eligible technicians for the requested slot,
// best first. Eligibility: at least one required-category skill at
// proficiency >= 3, not offline, and conflict-free for the slot. Ordering is
// deterministic for identical inputs.
func (se *DefaultSchedulingEngine) RankTechnicians(ctx context.Context, centerID, date string, start, durationMin int, categories []models.ServiceCategory) ([]models.TechnicianCandidate, error) {
	if durationMin <= 0 {
		return nil, newValidationError("duration", "duration must be positive, got %d", durationMin)
	}
	if len(categories) == 0 {
		return nil, newValidationError("categories", "at least one service category is required")
	}

	techs, err := se.Technicians.ListByCenter(centerID)
	if err != nil {
		return nil, fmt.Errorf("rank technicians: %w", err)
	}

	// Conflict checks hit the store, so they fan out per candidate.
	type candidate struct {
		tech     models.Technician
		eligible bool
	}
	resultsCh := make(chan candidate, len(techs))
	var wg sync.WaitGroup

	for _, t := range techs {
		if t.Status == models.TechnicianOffline || !t.HasEligibleSkill(categories, minEligibleProficiency) {
			continue
		}
		wg.Add(1)
		go func(t models.Technician) {
			defer wg.Done()
			check, err := se.CheckConflict(ctx, centerID, date, start, durationMin, t.ID)
			if err != nil {
				resultsCh <- candidate{tech: t, eligible: false}
				return
			}
			resultsCh <- candidate{tech: t, eligible: !check.HasConflict}
		}(t)
	}

	wg.Wait()
	close(resultsCh)

	var eligible []models.Technician
	for c := range resultsCh {
		if c.eligible {
			eligible = append(eligible, c.tech)
		}
	}

	sortTechnicians(eligible, categories)

	candidates := make([]models.TechnicianCandidate, 0, len(eligible))
	for i, t := range eligible {
		candidates = append(candidates, models.TechnicianCandidate{
			Technician: t,
			RankPoints: rankPoints(&t, categories),
			Preferred:  i == 0,
		})
	}
	return candidates, nil
}

// sortTechnicians orders by: recommended flag, ascending workload, descending
// experience, descending best matching proficiency, then id for determinism.
func sortTechnicians(techs []models.Technician, categories []models.ServiceCategory) {
	sort.Slice(techs, func(i, j int) bool {
		a, b := &techs[i], &techs[j]
		if a.Recommended != b.Recommended {
			return a.Recommended
		}
		if a.WorkloadPercent != b.WorkloadPercent {
			return a.WorkloadPercent < b.WorkloadPercent
		}
		if a.YearsExperience != b.YearsExperience {
			return a.YearsExperience > b.YearsExperience
		}
		ap, bp := a.MaxProficiency(categories), b.MaxProficiency(categories)
		if ap != bp {
			return ap > bp
		}
		return a.ID < b.ID
	})
}

// rankPoints is a display score mirroring the sort key weights.
func rankPoints(t *models.Technician, categories []models.ServiceCategory) float64 {
	points := float64(100-t.WorkloadPercent)*0.4 +
		float64(t.YearsExperience)*2.0 +
		float64(t.MaxProficiency(categories))*5.0
	if t.Recommended {
		points += 50
	}
	return points
}
