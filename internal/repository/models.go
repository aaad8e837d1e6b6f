// Package repository provides database abstraction for persisting the
// timing ledger of bitonic sort runs.
package repository

import "time"

// RunRecord represents the run_record table: one row per completed sort
// invocation, holding its topology, its phase timings aggregated across
// ranks, and the outcome of the optional post-sort validation pass.
type RunRecord struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID    string    `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	Processes  int       `gorm:"column:processes"`
	Elements   int       `gorm:"column:elements"`
	BatchSize  int       `gorm:"column:batch_size"`
	Seed       int64     `gorm:"column:seed"`
	SeedMs     float64   `gorm:"column:seed_ms"`
	ExchangeMs float64   `gorm:"column:exchange_ms"`
	ElbowMs    float64   `gorm:"column:elbow_ms"`
	TotalMs    float64   `gorm:"column:total_ms"`
	Valid      bool      `gorm:"column:valid"`
	Offense    string    `gorm:"column:offense;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for RunRecord.
func (RunRecord) TableName() string {
	return "run_record"
}
