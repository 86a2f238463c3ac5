package models

import "time"

// QuotationSequence stores the last issued quotation number per scope
// (the emission year).
type QuotationSequence struct {
	Scope     string    `gorm:"column:scope;primaryKey"`
	Value     int64     `gorm:"column:value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (QuotationSequence) TableName() string { return "quotation_sequences" }
