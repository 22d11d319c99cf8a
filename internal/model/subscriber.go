package model

import "time"

type Subscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Response  *string   `json:"response"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
