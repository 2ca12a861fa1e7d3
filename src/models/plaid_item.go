package models

import (
	"time"

	"github.com/google/uuid"
)

type PlaidItem struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"userId"`
	ItemID          string    `json:"itemId"`
	AccessToken     string    `json:"-"`
	InstitutionID   string    `json:"institutionId"`
	InstitutionName string    `json:"institutionName"`
	SyncCursor      string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}
