// file: internals/features/catalog/sessions/service/gorm_store.go
package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "athletiq_backend/internals/features/catalog/sessions/model"
)

// GormStore is the production Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

func (s *GormStore) FindSession(ctx context.Context, id uuid.UUID) (*model.TrainingSessionModel, error) {
	var m model.TrainingSessionModel
	if err := s.DB.WithContext(ctx).
		Preload("SessionOccurrences").
		First(&m, "session_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *GormStore) InsertSession(ctx context.Context, m *model.TrainingSessionModel) error {
	return s.DB.WithContext(ctx).Create(m).Error
}

func (s *GormStore) SaveSession(ctx context.Context, m *model.TrainingSessionModel) error {
	return s.DB.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: false}).Save(m).Error
}

func (s *GormStore) UpdateSessionActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.DB.WithContext(ctx).
		Model(&model.TrainingSessionModel{}).
		Where("session_id = ?", id).
		Update("session_is_active", active).Error
}

func (s *GormStore) ReplaceOccurrences(ctx context.Context, id uuid.UUID, occs []model.SessionOccurrenceModel) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("occurrence_session_id = ?", id).
			Delete(&model.SessionOccurrenceModel{}).Error; err != nil {
			return err
		}
		for i := range occs {
			occs[i].OccurrenceSessionID = id
		}
		if len(occs) == 0 {
			return nil
		}
		return tx.Create(&occs).Error
	})
}
