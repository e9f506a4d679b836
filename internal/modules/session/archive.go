package session

import (
	"github.com/inkgrade/core/internal/models"
	"gorm.io/gorm"
)

// GormArchiver writes graded results into the MySQL archive.
type GormArchiver struct {
	db *gorm.DB
}

func NewGormArchiver(db *gorm.DB) *GormArchiver {
	return &GormArchiver{db: db}
}

func (a *GormArchiver) Archive(doc models.Document, result *models.GradingResult, model string) error {
	record := models.GradingRecordModel{
		Label:  doc.Label,
		Source: doc.Source,
		Model:  model,
		Result: *result,
		Total:  result.Scores.Total,
	}
	return a.db.Create(&record).Error
}
