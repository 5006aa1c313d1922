// file: internals/features/catalog/sessions/controller/session_public_controller.go
package controller

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	model "athletiq_backend/internals/features/catalog/sessions/model"
	helper "athletiq_backend/internals/helpers"
)

type SessionPublicController struct {
	DB *gorm.DB
}

func NewSessionPublicController(db *gorm.DB) *SessionPublicController {
	return &SessionPublicController{DB: db}
}

// GET /api/public/sessions?gender=&grade=&skill=&page=&per_page=
func (h *SessionPublicController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := h.DB.WithContext(c.Context()).
		Model(&model.TrainingSessionModel{}).
		Where("session_is_active = true")

	if gender := c.Query("gender"); gender != "" {
		q = q.Where("session_gender IN ('open', ?)", gender)
	}
	if gradeStr := c.Query("grade"); gradeStr != "" {
		grade, err := strconv.Atoi(gradeStr)
		if err != nil || grade < 1 || grade > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid grade")
		}
		q = q.Where("session_grade_min <= ? AND session_grade_max >= ?", grade, grade)
	}
	if skill := c.Query("skill"); skill != "" {
		q = q.Where("session_skill_level IN ('all', ?)", skill)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var sessions []model.TrainingSessionModel
	if err := q.Preload("SessionOccurrences").
		Order("session_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&sessions).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "OK", fiber.Map{
		"sessions":   sessions,
		"pagination": helper.BuildPagination(paging, total, len(sessions)),
	})
}

// GET /api/public/sessions/:id
func (h *SessionPublicController) Detail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var m model.TrainingSessionModel
	if err := h.DB.WithContext(c.Context()).
		Preload("SessionOccurrences").
		First(&m, "session_id = ? AND session_is_active = true", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "OK", m)
}
