// file: internals/features/users/athletes/dto/athlete_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	model "athletiq_backend/internals/features/users/athletes/model"
)

type CreateAthleteRequest struct {
	FirstName  string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName   string  `json:"last_name" validate:"required,min=1,max=100"`
	Birthdate  *string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Gender     string  `json:"gender" validate:"required,oneof=male female"`
	School     *string `json:"school" validate:"omitempty,max=150"`
	Grade      *int    `json:"grade" validate:"omitempty,min=1,max=12"`
	Position   *string `json:"position" validate:"omitempty,max=50"`
	SkillLevel *string `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced"`
}

type UpdateAthleteRequest struct {
	FirstName  *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName   *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Birthdate  *string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Gender     *string `json:"gender" validate:"omitempty,oneof=male female"`
	School     *string `json:"school" validate:"omitempty,max=150"`
	Grade      *int    `json:"grade" validate:"omitempty,min=1,max=12"`
	Position   *string `json:"position" validate:"omitempty,max=50"`
	SkillLevel *string `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced"`
}

func (r *CreateAthleteRequest) ToModel(userID uuid.UUID) *model.AthleteModel {
	m := &model.AthleteModel{
		AthleteUserID:     userID,
		AthleteFirstName:  r.FirstName,
		AthleteLastName:   r.LastName,
		AthleteGender:     r.Gender,
		AthleteSchool:     r.School,
		AthleteGrade:      r.Grade,
		AthletePosition:   r.Position,
		AthleteSkillLevel: r.SkillLevel,
	}
	if r.Birthdate != nil {
		if t, err := time.Parse("2006-01-02", *r.Birthdate); err == nil {
			m.AthleteBirthdate = &t
		}
	}
	return m
}

func (r *UpdateAthleteRequest) Apply(m *model.AthleteModel) {
	if r.FirstName != nil {
		m.AthleteFirstName = *r.FirstName
	}
	if r.LastName != nil {
		m.AthleteLastName = *r.LastName
	}
	if r.Birthdate != nil {
		if t, err := time.Parse("2006-01-02", *r.Birthdate); err == nil {
			m.AthleteBirthdate = &t
		}
	}
	if r.Gender != nil {
		m.AthleteGender = *r.Gender
	}
	if r.School != nil {
		m.AthleteSchool = r.School
	}
	if r.Grade != nil {
		m.AthleteGrade = r.Grade
	}
	if r.Position != nil {
		m.AthletePosition = r.Position
	}
	if r.SkillLevel != nil {
		m.AthleteSkillLevel = r.SkillLevel
	}
}
