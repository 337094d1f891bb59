package models

// EntityType distinguishes binary habits/goals from accumulating ones.
type EntityType string

const (
	Qualitative  EntityType = "qualitative"
	Quantitative EntityType = "quantitative"
)
