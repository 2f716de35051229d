package models

import (
	"encoding/json"
	"time"
)

type Quota struct {
	ID           int64     `db:"id" json:"id"`
	AccountID    string    `db:"account_id" json:"account_id"`
	ResourceType string    `db:"resource_type" json:"resource_type"`
	Limit        int64     `db:"limit_value" json:"limit"`
	Used         int64     `db:"used_value" json:"used"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Remaining never goes below zero, even when usage overshoots the limit.
func (q Quota) Remaining() int64 {
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// MarshalJSON adds the derived "remaining" field.
func (q Quota) MarshalJSON() ([]byte, error) {
	type plain Quota
	return json.Marshal(struct {
		plain
		Remaining int64 `json:"remaining"`
	}{plain(q), q.Remaining()})
}
