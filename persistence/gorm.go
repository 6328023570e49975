package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRow is the single table every collection lives in.
type documentRow struct {
	Collection string          `gorm:"primaryKey;type:varchar(64)"`
	ID         string          `gorm:"primaryKey;type:varchar(64)"`
	Payload    json.RawMessage `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// GormBackend stores documents in PostgreSQL through gorm.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend migrates the documents table and returns the backend.
func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &GormBackend{db: db}, nil
}

func (g *GormBackend) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	var rows []documentRow
	if err := g.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, Document{ID: r.ID, Data: r.Payload})
	}
	return docs, nil
}

func (g *GormBackend) Write(ctx context.Context, collection, id string, data []byte) error {
	return upsert(g.db.WithContext(ctx), collection, id, data)
}

func (g *GormBackend) Delete(ctx context.Context, collection, id string) error {
	return g.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&documentRow{}).Error
}

// Apply runs the batch in one database transaction.
func (g *GormBackend) Apply(ctx context.Context, ops []Op) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			var err error
			switch op.Kind {
			case OpWrite:
				err = upsert(tx, op.Collection, op.ID, op.Data)
			case OpDelete:
				err = tx.Where("collection = ? AND id = ?", op.Collection, op.ID).
					Delete(&documentRow{}).Error
			}
			if err != nil {
				return fmt.Errorf("%s %s/%s: %w", op.Kind, op.Collection, op.ID, err)
			}
		}
		return nil
	})
}

func upsert(db *gorm.DB, collection, id string, data []byte) error {
	row := documentRow{
		Collection: collection,
		ID:         id,
		Payload:    json.RawMessage(data),
		UpdatedAt:  time.Now(),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
}
