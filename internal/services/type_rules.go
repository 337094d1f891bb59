package services

import (
	"fmt"

	"github.com/arnold/habits-api/internal/models"
)

// typeRule holds every constraint that depends on an entity's type. Adding a
// type means adding a row here.
type typeRule struct {
	// fixedValue, when non-zero, is the only accepted entry value, the only
	// goal target and the value a habit check logs.
	fixedValue float64
	// oncePerDay limits an entity to a single log entry per calendar day.
	oncePerDay bool
}

var typeRules = map[models.EntityType]typeRule{
	models.Qualitative:  {fixedValue: 1, oncePerDay: true},
	models.Quantitative: {},
}

func ruleFor(t models.EntityType) (typeRule, error) {
	rule, ok := typeRules[t]
	if !ok {
		return typeRule{}, fmt.Errorf("%w: unknown type %q", ErrUnprocessable, t)
	}
	return rule, nil
}

// checkEntryValue validates a value logged against a goal of this type.
func (r typeRule) checkEntryValue(t models.EntityType, value float64) error {
	if r.fixedValue != 0 && value != r.fixedValue {
		return fmt.Errorf("%w: %s entries only accept value %g", ErrUnprocessable, t, r.fixedValue)
	}
	if value < 1 {
		return fmt.Errorf("%w: value must be at least 1", ErrValidation)
	}
	return nil
}

// habitValue resolves progressImpactValue for a habit definition.
func (r typeRule) habitValue(t models.EntityType, impact *float64) (*float64, error) {
	if r.fixedValue != 0 {
		if impact != nil && *impact != r.fixedValue {
			return nil, fmt.Errorf("%w: %s habits cannot set progressImpactValue", ErrUnprocessable, t)
		}
		return nil, nil
	}
	if impact == nil {
		return nil, fmt.Errorf("%w: %s habits require progressImpactValue", ErrUnprocessable, t)
	}
	if *impact < 1 {
		return nil, fmt.Errorf("%w: progressImpactValue must be at least 1", ErrUnprocessable)
	}
	return impact, nil
}

// goalTarget resolves targetValue for a goal definition.
func (r typeRule) goalTarget(t models.EntityType, target *float64) (float64, error) {
	if r.fixedValue != 0 {
		if target != nil && *target != r.fixedValue {
			return 0, fmt.Errorf("%w: %s goals have a fixed target of %g", ErrUnprocessable, t, r.fixedValue)
		}
		return r.fixedValue, nil
	}
	if target == nil {
		return 0, fmt.Errorf("%w: %s goals require targetValue", ErrUnprocessable, t)
	}
	if *target < 1 {
		return 0, fmt.Errorf("%w: targetValue must be at least 1", ErrUnprocessable)
	}
	return *target, nil
}

// checkValue is the value a check of habit h writes to the log.
func checkValue(h *models.Habit) (float64, error) {
	rule, err := ruleFor(h.Type)
	if err != nil {
		return 0, err
	}
	if rule.fixedValue != 0 {
		return rule.fixedValue, nil
	}
	if h.ProgressImpactValue == nil || *h.ProgressImpactValue < 1 {
		return 0, fmt.Errorf("%w: habit has no progressImpactValue", ErrUnprocessable)
	}
	return *h.ProgressImpactValue, nil
}
