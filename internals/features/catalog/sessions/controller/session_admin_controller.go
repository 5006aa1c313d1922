// file: internals/features/catalog/sessions/controller/session_admin_controller.go
package controller

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "athletiq_backend/internals/features/catalog/sessions/dto"
	model "athletiq_backend/internals/features/catalog/sessions/model"
	svc "athletiq_backend/internals/features/catalog/sessions/service"
	helper "athletiq_backend/internals/helpers"
)

type SessionAdminController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Sync      *svc.SyncService
}

func NewSessionAdminController(db *gorm.DB, sync *svc.SyncService) *SessionAdminController {
	return &SessionAdminController{DB: db, Validator: validator.New(), Sync: sync}
}

// POST /api/a/sessions
func (h *SessionAdminController) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if req.GradeMin != 0 && req.GradeMax != 0 && req.GradeMin > req.GradeMax {
		return fiber.NewError(fiber.StatusBadRequest, "grade_min must not exceed grade_max")
	}

	m, err := req.ToModel()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid occurrence time: "+err.Error())
	}

	if err := h.Sync.CreateSession(c.UserContext(), m); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "create session failed: "+err.Error())
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Session created", m)
}

// PATCH /api/a/sessions/:id
func (h *SessionAdminController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var m model.TrainingSessionModel
	if err := h.DB.WithContext(c.Context()).First(&m, "session_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var req dto.UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	priceChanged := false
	if req.Name != nil {
		m.SessionName = *req.Name
	}
	if req.Description != nil {
		m.SessionDescription = *req.Description
	}
	if req.PriceCents != nil && *req.PriceCents != m.SessionPriceCents {
		m.SessionPriceCents = *req.PriceCents
		priceChanged = true
	}
	if req.Stock != nil {
		m.SessionStock = *req.Stock
	}
	if req.Gender != nil {
		m.SessionGender = *req.Gender
	}
	if req.GradeMin != nil {
		m.SessionGradeMin = *req.GradeMin
	}
	if req.GradeMax != nil {
		m.SessionGradeMax = *req.GradeMax
	}
	if req.SkillLevel != nil {
		m.SessionSkillLevel = *req.SkillLevel
	}
	if m.SessionGradeMin > m.SessionGradeMax {
		return fiber.NewError(fiber.StatusBadRequest, "grade_min must not exceed grade_max")
	}

	if req.Occurrences != nil {
		occs, err := dto.ParseOccurrences(req.Occurrences)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid occurrence time: "+err.Error())
		}
		if err := h.Sync.Store.ReplaceOccurrences(c.UserContext(), id, occs); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "save occurrences failed")
		}
	}

	m.SessionOccurrences = nil // saved separately above
	if err := h.Sync.UpdateSession(c.UserContext(), &m, priceChanged); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "update session failed: "+err.Error())
	}
	return helper.Success(c, "Session updated", m)
}

// PATCH /api/a/sessions/:id/active
func (h *SessionAdminController) ToggleActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req dto.ToggleActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := h.Sync.SetActive(c.UserContext(), id, *req.Active); err != nil {
		if errors.Is(err, svc.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return fiber.NewError(fiber.StatusBadGateway, "toggle failed: "+err.Error())
	}
	return helper.Success(c, "Session active flag updated", fiber.Map{"session_id": id, "active": *req.Active})
}

// POST /api/a/sessions/:id/banner: multipart upload, stored as webp
func (h *SessionAdminController) UploadBanner(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	fileHeader, err := c.FormFile("banner")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing banner file")
	}

	url, err := helper.SaveBannerImage("sessions", fileHeader)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.DB.WithContext(c.Context()).
		Model(&model.TrainingSessionModel{}).
		Where("session_id = ?", id).
		Update("session_banner_url", url).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "save banner url failed")
	}
	return helper.Success(c, "Banner uploaded", fiber.Map{"banner_url": url})
}

// GET /api/a/sessions/:id/roster.csv: paid, non-refunded line items
func (h *SessionAdminController) ExportRosterCSV(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	type rosterRow struct {
		FirstName  string
		LastName   string
		Gender     string
		Grade      *int
		School     *string
		Quantity   int
		UnitCents  int64
		PayStatus  string
		UserEmail  string
	}

	var rows []rosterRow
	if err := h.DB.WithContext(c.Context()).Raw(`
		SELECT a.athlete_first_name AS first_name,
		       a.athlete_last_name  AS last_name,
		       a.athlete_gender     AS gender,
		       a.athlete_grade      AS grade,
		       a.athlete_school     AS school,
		       pa.payment_athlete_quantity   AS quantity,
		       pa.payment_athlete_unit_cents AS unit_cents,
		       p.payment_status     AS pay_status,
		       u.email              AS user_email
		FROM payment_athletes pa
		JOIN payments p ON p.payment_id = pa.payment_athlete_payment_id
		JOIN athletes a ON a.athlete_id = pa.payment_athlete_athlete_id
		JOIN users u    ON u.id = p.payment_user_id
		WHERE pa.payment_athlete_session_id = ?
		  AND pa.payment_athlete_refunded_at IS NULL
		  AND p.payment_status IN ('succeeded','cash','partial_refund')
		ORDER BY a.athlete_last_name, a.athlete_first_name
	`, id).Scan(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"last_name", "first_name", "gender", "grade", "school", "quantity", "unit_price_cents", "payment_status", "parent_email"})
	for _, r := range rows {
		grade := ""
		if r.Grade != nil {
			grade = strconv.Itoa(*r.Grade)
		}
		school := ""
		if r.School != nil {
			school = *r.School
		}
		_ = w.Write([]string{
			r.LastName, r.FirstName, r.Gender, grade, school,
			strconv.Itoa(r.Quantity), strconv.FormatInt(r.UnitCents, 10),
			r.PayStatus, r.UserEmail,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "csv encode failed")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="roster-%s.csv"`, id))
	return c.SendString(sb.String())
}
