package model

import "time"

// Link describes the core short-link entity stored in SQLite.
type Link struct {
	ID        uint       `db:"id" gorm:"primaryKey;autoIncrement"`
	LongURL   string     `db:"long_url" gorm:"type:text;not null"`
	ShortCode string     `db:"short_code" gorm:"uniqueIndex;size:64;not null"`
	Clicks    int64      `db:"clicks" gorm:"not null;default:0"`
	ExpiresAt *time.Time `db:"expires_at" gorm:"index"`
	CreatedAt time.Time  `db:"created_at" gorm:"autoCreateTime"`
}

// Expired reports whether the link carries an expiration that has passed.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}
