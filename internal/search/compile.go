package search

import (
	"strings"

	"github.com/dancescene/discovery/internal/domain/repositories"
	apperrors "github.com/dancescene/discovery/pkg/errors"
)

// Compile turns a filter model into a predicate tree plus, when a query is
// present, the scoring expression. Absent fields impose no constraint; the
// geo filter is resolved separately and intersected by the adapter.
func Compile(filter repositories.EventFilter) (Predicate, *ScoreExpr, error) {
	if err := Validate(filter); err != nil {
		return nil, nil, err
	}

	preds := And{
		Term{Column: "events.is_active", Value: true},
	}

	if filter.StartsAfter != nil {
		preds = append(preds, Range{Column: "events.start_date", Min: *filter.StartsAfter})
	}
	if filter.EndsBefore != nil {
		preds = append(preds, Range{Column: "events.end_date", Max: *filter.EndsBefore})
	}

	if p := artistPredicate("event_teachers", "teachers", "teacher_id", filter.TeacherIDs, filter.TeacherName); p != nil {
		preds = append(preds, p)
	}
	if p := artistPredicate("event_musicians", "musicians", "musician_id", filter.MusicianIDs, filter.MusicianName); p != nil {
		preds = append(preds, p)
	}

	if len(filter.EventTypes) > 0 {
		preds = append(preds, AnyTag{Column: "events.event_types", Values: filter.EventTypes})
	}
	if len(filter.SkillLevels) > 0 {
		preds = append(preds, AnyTag{Column: "events.skill_levels", Values: filter.SkillLevels})
	}

	if filter.MinPrice != nil || filter.MaxPrice != nil {
		priceRange := Range{Column: "prices.amount"}
		if filter.MinPrice != nil {
			priceRange.Min = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			priceRange.Max = *filter.MaxPrice
		}
		preds = append(preds, ExistsIn{
			Table:  "prices",
			Link:   "event_id",
			Parent: "events.id",
			Where: And{
				Term{Column: "prices.available", Value: true},
				priceRange,
			},
		})
	}

	return preds, ScoreFor(strings.TrimSpace(filter.Query)), nil
}

// Validate rejects filter models the compiler cannot express
func Validate(filter repositories.EventFilter) error {
	if filter.RadiusKm > 0 && (filter.Latitude == nil || filter.Longitude == nil) {
		return apperrors.NewValidationError("geo radius requires a center point")
	}
	if filter.RadiusKm < 0 {
		return apperrors.NewValidationError("geo radius must be positive")
	}
	if filter.Latitude != nil && (*filter.Latitude < -90 || *filter.Latitude > 90) {
		return apperrors.NewValidationError("latitude out of range")
	}
	if filter.Longitude != nil && (*filter.Longitude < -180 || *filter.Longitude > 180) {
		return apperrors.NewValidationError("longitude out of range")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return apperrors.NewValidationError("min price exceeds max price")
	}
	if filter.StartsAfter != nil && filter.EndsBefore != nil && filter.StartsAfter.After(*filter.EndsBefore) {
		return apperrors.NewValidationError("date range lower bound exceeds upper bound")
	}
	return nil
}

// artistPredicate builds the existential any-of predicate for teacher or
// musician filters: id in set OR name contains text.
func artistPredicate(assocTable, entityTable, fkColumn string, ids []string, name string) Predicate {
	name = strings.TrimSpace(name)
	if len(ids) == 0 && name == "" {
		return nil
	}

	var match Or
	if len(ids) > 0 {
		match = append(match, InSet{Column: entityTable + ".id", Values: ids})
	}
	if name != "" {
		match = append(match, TextMatch{Column: entityTable + ".name", Query: name, Mode: MatchContains})
	}

	return ExistsIn{
		Table:     assocTable,
		Link:      "event_id",
		Parent:    "events.id",
		JoinTable: entityTable,
		JoinOn:    [2]string{assocTable + "." + fkColumn, entityTable + ".id"},
		Where:     match,
	}
}
