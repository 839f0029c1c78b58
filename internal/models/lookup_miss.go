package models

import (
	"time"
)

// LookupMiss counts queries that resolved to no card, so curators can add
// nicknames for the terms players actually type
type LookupMiss struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Key       string    `json:"key" gorm:"column:query_key;uniqueIndex;not null"` // normalized query
	RawQuery  string    `json:"raw_query"`                                        // most recent spelling
	Hits      int       `json:"hits" gorm:"default:1"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// LookupMissResponse is the API response for the miss report
type LookupMissResponse struct {
	Misses     []LookupMiss `json:"misses"`
	TotalCount int64        `json:"total_count"`
}
