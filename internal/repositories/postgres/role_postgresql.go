package postgres

import (
	"context"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RolePostgreSQL struct {
	db *gorm.DB
}

func NewRolePostgreSQL(db *gorm.DB) repositories.RoleRepository {
	return &RolePostgreSQL{db: db}
}

func (r RolePostgreSQL) Get(ctx context.Context, uid string, role models.UserRole) (*models.RoleRecord, error) {
	var record models.RoleRecord
	if err := r.db.WithContext(ctx).
		Where("uid = ? AND role = ?", uid, role).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r RolePostgreSQL) Upsert(ctx context.Context, record *models.RoleRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}, {Name: "role"}},
			DoUpdates: clause.AssignmentColumns([]string{"marker", "granted_by"}),
		}).
		Create(record).Error
}

func (r RolePostgreSQL) Delete(ctx context.Context, uid string, role models.UserRole) error {
	return r.db.WithContext(ctx).
		Where("uid = ? AND role = ?", uid, role).
		Delete(&models.RoleRecord{}).Error
}
