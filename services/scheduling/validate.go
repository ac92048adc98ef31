package scheduling

import (
	"fmt"
	"time"

	"voltserve/models"
	"voltserve/utils"
)

// validatedDraft carries the derived values of a draft that passed validation.
type validatedDraft struct {
	start       int
	end         int
	durationMin int
	lines       []models.ServiceLine
	categories  []models.ServiceCategory
	priority    models.Priority
	totalPrice  float64
	spillover   bool
}

// slotTiming is the resolved timing of a validated slot request.
type slotTiming struct {
	start     int
	end       int
	spillover bool
}

// validateTiming checks a (date, time, duration) request against the center's
// calendar, operating hours, spillover policy and minimum lead time.
func (se *DefaultSchedulingEngine) validateTiming(center *models.ServiceCenter, date, clock string, durationMin int) (*slotTiming, error) {
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, newValidationError("date", "%v", err)
	}
	start, err := utils.ParseClockMinutes(clock)
	if err != nil {
		return nil, newValidationError("time", "%v", err)
	}

	loc := center.Location()
	localDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	if center.IsClosedOn(localDay) {
		return nil, newValidationError("date", "center %s is closed on %s", center.ID, date)
	}

	if start < center.OpenMinute || start >= center.CloseMinute {
		return nil, newValidationError("time", "start %s is outside operating hours %s-%s",
			clock, utils.FormatClockMinutes(center.OpenMinute), utils.FormatClockMinutes(center.CloseMinute))
	}

	end := start + durationMin
	spillover := false
	if end > center.CloseMinute {
		if !se.Policy.AllowSpillover {
			return nil, newValidationError("time", "service would run past closing time %s",
				utils.FormatClockMinutes(center.CloseMinute))
		}
		spillover = true
	}

	startAt := localDay.Add(time.Duration(start) * time.Minute)
	minStart := se.now().In(loc).Add(time.Duration(se.Policy.MinLeadTimeMin) * time.Minute)
	if startAt.Before(minStart) {
		return nil, newValidationError("time", "bookings require at least %d minutes lead time", se.Policy.MinLeadTimeMin)
	}

	return &slotTiming{start: start, end: end, spillover: spillover}, nil
}

// validateDraft enforces the booking preconditions: formats, resolvable
// services, operating hours, closed days and the minimum lead time.
func (se *DefaultSchedulingEngine) validateDraft(draft models.BookingDraft) (*validatedDraft, error) {
	if len(draft.Services) == 0 {
		return nil, newValidationError("services", "at least one service is required")
	}
	if draft.CustomerID == "" {
		return nil, newValidationError("customerId", "customer reference is required")
	}

	center, err := se.Centers.GetByID(draft.CenterID)
	if err != nil {
		return nil, newValidationError("centerId", "unknown service center %s", draft.CenterID)
	}

	lines, categories, totalDuration, totalPrice, err := se.resolveServices(draft.Services)
	if err != nil {
		return nil, err
	}

	timing, err := se.validateTiming(center, draft.Date, draft.Time, totalDuration)
	if err != nil {
		return nil, err
	}

	priority := draft.Priority
	switch priority {
	case "":
		priority = models.PriorityNormal
	case models.PriorityLow, models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
	default:
		return nil, newValidationError("priority", "unknown priority %q", priority)
	}

	return &validatedDraft{
		start:       timing.start,
		end:         timing.end,
		durationMin: totalDuration,
		lines:       lines,
		categories:  categories,
		priority:    priority,
		totalPrice:  totalPrice,
		spillover:   timing.spillover,
	}, nil
}

// resolveServices denormalizes the requested services from the catalog; the
// appointment's total duration is the sum of its line durations by
// construction.
func (se *DefaultSchedulingEngine) resolveServices(requests []models.ServiceRequest) ([]models.ServiceLine, []models.ServiceCategory, int, float64, error) {
	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		if req.ServiceID == "" {
			return nil, nil, 0, 0, newValidationError("services", "service id must not be empty")
		}
		ids = append(ids, req.ServiceID)
	}

	catalog, err := se.Catalog.GetMany(ids)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("resolve services: %w", err)
	}
	byID := make(map[string]models.Service, len(catalog))
	for _, svc := range catalog {
		byID[svc.ID] = svc
	}

	var (
		lines         []models.ServiceLine
		totalDuration int
		totalPrice    float64
		seen          = make(map[models.ServiceCategory]bool)
		categories    []models.ServiceCategory
	)
	for _, req := range requests {
		svc, ok := byID[req.ServiceID]
		if !ok {
			return nil, nil, 0, 0, newValidationError("services", "unknown service %s", req.ServiceID)
		}
		qty := req.Quantity
		if qty <= 0 {
			qty = 1
		}
		lines = append(lines, models.ServiceLine{
			ServiceID:       svc.ID,
			Name:            svc.Name,
			Category:        svc.Category,
			Quantity:        qty,
			DurationMinutes: svc.EstimatedMinutes * qty,
			Price:           svc.BasePrice * float64(qty),
		})
		totalDuration += svc.EstimatedMinutes * qty
		totalPrice += svc.BasePrice * float64(qty)
		if !seen[svc.Category] {
			seen[svc.Category] = true
			categories = append(categories, svc.Category)
		}
	}
	if totalDuration <= 0 {
		return nil, nil, 0, 0, newValidationError("services", "total duration must be positive")
	}
	return lines, categories, totalDuration, totalPrice, nil
}
