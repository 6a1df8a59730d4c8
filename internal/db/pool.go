package db

import "time"

// PoolKind 区分资料的两类内容池。
type PoolKind string

const (
	PoolKindPublished PoolKind = "published"
	PoolKindFeatured  PoolKind = "featured"
)

// ParsePoolKind validates a raw pool kind.
func ParsePoolKind(raw string) (PoolKind, bool) {
	switch PoolKind(raw) {
	case PoolKindPublished, PoolKindFeatured:
		return PoolKind(raw), true
	}
	return "", false
}

// PoolEntry 将一条内容挂到某个资料的内容池中，ID 决定池内顺序。
// 同一内容可以出现在多个资料的池里。
type PoolEntry struct {
	ID        uint     `gorm:"primaryKey"`
	ProfileID uint     `gorm:"not null;uniqueIndex:idx_pool_member,priority:1"`
	Category  Category `gorm:"size:20;not null;uniqueIndex:idx_pool_member,priority:2"`
	Kind      PoolKind `gorm:"size:20;not null;uniqueIndex:idx_pool_member,priority:3"`
	ContentID uint     `gorm:"not null;uniqueIndex:idx_pool_member,priority:4;index"`
	CreatedAt time.Time
}

// TableName 返回自定义表名
func (PoolEntry) TableName() string {
	return "pool_entries"
}
