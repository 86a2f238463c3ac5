package models

import "time"

// LocalQuotation is the fallback copy of a saved quotation record. SortKey
// orders records by first save; the oldest key is evicted first.
type LocalQuotation struct {
	ID        string    `gorm:"column:id;primaryKey"`
	CotNumber string    `gorm:"column:cot_number;not null;default:''"`
	SortKey   int64     `gorm:"column:sort_key;not null"`
	SavedAt   time.Time `gorm:"column:saved_at;not null"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
}

func (LocalQuotation) TableName() string { return "local_quotations" }
