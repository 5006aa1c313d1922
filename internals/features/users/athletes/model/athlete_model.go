package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// AthleteModel is a registrant profile owned by a user. Admins may create
// athletes on behalf of walk-in (cash) registrations.
type AthleteModel struct {
	AthleteID     uuid.UUID `gorm:"column:athlete_id;type:uuid;default:gen_random_uuid();primaryKey" json:"athlete_id"`
	AthleteUserID uuid.UUID `gorm:"column:athlete_user_id;type:uuid;not null;index" json:"athlete_user_id"`

	AthleteFirstName  string     `gorm:"column:athlete_first_name;size:100;not null" json:"athlete_first_name"`
	AthleteLastName   string     `gorm:"column:athlete_last_name;size:100;not null" json:"athlete_last_name"`
	AthleteBirthdate  *time.Time `gorm:"column:athlete_birthdate" json:"athlete_birthdate,omitempty"`
	AthleteGender     string     `gorm:"column:athlete_gender;type:varchar(10)" json:"athlete_gender"`
	AthleteSchool     *string    `gorm:"column:athlete_school;size:150" json:"athlete_school,omitempty"`
	AthleteGrade      *int       `gorm:"column:athlete_grade;check:athlete_grade BETWEEN 1 AND 12" json:"athlete_grade,omitempty"`
	AthletePosition   *string    `gorm:"column:athlete_position;size:50" json:"athlete_position,omitempty"`
	AthleteSkillLevel *string    `gorm:"column:athlete_skill_level;type:varchar(20)" json:"athlete_skill_level,omitempty"`

	CreatedAt time.Time      `gorm:"column:athlete_created_at;autoCreateTime" json:"athlete_created_at"`
	UpdatedAt time.Time      `gorm:"column:athlete_updated_at;autoUpdateTime" json:"athlete_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:athlete_deleted_at;index" json:"-"`
}

func (AthleteModel) TableName() string { return "athletes" }

func (a *AthleteModel) FullName() string {
	return a.AthleteFirstName + " " + a.AthleteLastName
}
