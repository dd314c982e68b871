package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentChunk is one embedded slice of an ingested document.
type DocumentChunk struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SourceFile string         `gorm:"size:512;not null;index" json:"source_file"`
	ChunkIndex int            `gorm:"not null" json:"chunk_index"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Embedding  datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (d *DocumentChunk) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
