// file: internals/features/catalog/sessions/dto/session_dto.go
package dto

import (
	"time"

	model "athletiq_backend/internals/features/catalog/sessions/model"
)

type OccurrenceInput struct {
	StartsAt string `json:"starts_at" validate:"required"`
	EndsAt   string `json:"ends_at" validate:"required"`
	Location string `json:"location" validate:"required,max=200"`
}

type CreateSessionRequest struct {
	Name        string            `json:"name" validate:"required,min=3,max=150"`
	Description string            `json:"description" validate:"max=4000"`
	PriceCents  int64             `json:"price_cents" validate:"required,min=0"`
	Currency    string            `json:"currency" validate:"omitempty,len=3"`
	Stock       int               `json:"stock" validate:"required,min=1"`
	Gender      string            `json:"gender" validate:"omitempty,oneof=male female open"`
	GradeMin    int               `json:"grade_min" validate:"omitempty,min=1,max=12"`
	GradeMax    int               `json:"grade_max" validate:"omitempty,min=1,max=12"`
	SkillLevel  string            `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced all"`
	Occurrences []OccurrenceInput `json:"occurrences" validate:"required,min=1,dive"`
}

type UpdateSessionRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=3,max=150"`
	Description *string           `json:"description" validate:"omitempty,max=4000"`
	PriceCents  *int64            `json:"price_cents" validate:"omitempty,min=0"`
	Stock       *int              `json:"stock" validate:"omitempty,min=1"`
	Gender      *string           `json:"gender" validate:"omitempty,oneof=male female open"`
	GradeMin    *int              `json:"grade_min" validate:"omitempty,min=1,max=12"`
	GradeMax    *int              `json:"grade_max" validate:"omitempty,min=1,max=12"`
	SkillLevel  *string           `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced all"`
	Occurrences []OccurrenceInput `json:"occurrences" validate:"omitempty,min=1,dive"`
}

type ToggleActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (r *CreateSessionRequest) ToModel() (*model.TrainingSessionModel, error) {
	m := &model.TrainingSessionModel{
		SessionName:        r.Name,
		SessionDescription: r.Description,
		SessionPriceCents:  r.PriceCents,
		SessionCurrency:    "usd",
		SessionStock:       r.Stock,
		SessionIsActive:    true,
		SessionGender:      model.SessionGenderOpen,
		SessionGradeMin:    1,
		SessionGradeMax:    12,
		SessionSkillLevel:  model.SessionSkillAll,
	}
	if r.Currency != "" {
		m.SessionCurrency = r.Currency
	}
	if r.Gender != "" {
		m.SessionGender = r.Gender
	}
	if r.GradeMin != 0 {
		m.SessionGradeMin = r.GradeMin
	}
	if r.GradeMax != 0 {
		m.SessionGradeMax = r.GradeMax
	}
	if r.SkillLevel != "" {
		m.SessionSkillLevel = r.SkillLevel
	}

	occs, err := parseOccurrences(r.Occurrences)
	if err != nil {
		return nil, err
	}
	m.SessionOccurrences = occs
	return m, nil
}

func parseOccurrences(in []OccurrenceInput) ([]model.SessionOccurrenceModel, error) {
	occs := make([]model.SessionOccurrenceModel, 0, len(in))
	for _, o := range in {
		starts, err := time.Parse(time.RFC3339, o.StartsAt)
		if err != nil {
			return nil, err
		}
		ends, err := time.Parse(time.RFC3339, o.EndsAt)
		if err != nil {
			return nil, err
		}
		occs = append(occs, model.SessionOccurrenceModel{
			OccurrenceStartsAt: starts,
			OccurrenceEndsAt:   ends,
			OccurrenceLocation: o.Location,
		})
	}
	return occs, nil
}

// ParseOccurrences is the exported form used by the admin controller on
// updates.
func ParseOccurrences(in []OccurrenceInput) ([]model.SessionOccurrenceModel, error) {
	return parseOccurrences(in)
}
