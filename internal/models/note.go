package models

import (
	"time"

	"github.com/lib/pq"
)

// Note tags keep insertion order and may repeat.
type Note struct {
	ID        int64          `db:"id" json:"id"`
	Title     string         `db:"title" json:"title"`
	Content   *string        `db:"content" json:"content"`
	Tags      pq.StringArray `db:"tags" json:"tags"`
	OwnerID   int64          `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// NormalizeTags makes sure tags serialize as [] rather than null.
func (n *Note) NormalizeTags() {
	if n.Tags == nil {
		n.Tags = pq.StringArray{}
	}
}
