package repository

import (
	"context"

	"github.com/GoPolymarket/polyexec/internal/model"
	"gorm.io/gorm"
)

type PostgresSubmissionRepo struct {
	db *gorm.DB
}

func NewPostgresSubmissionRepo(db *gorm.DB) (*PostgresSubmissionRepo, error) {
	if err := db.AutoMigrate(&model.Submission{}); err != nil {
		return nil, err
	}
	return &PostgresSubmissionRepo{db: db}, nil
}

func (r *PostgresSubmissionRepo) Insert(ctx context.Context, entry *model.Submission) error {
	if entry == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PostgresSubmissionRepo) List(ctx context.Context, limit int) ([]*model.Submission, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var entries []*model.Submission
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
