package user

import "time"

type User struct {
	ID          string
	Email       string
	DisplayName string
	// PasswordHash is the encoded argon2id hash. Never serialized to DTOs.
	PasswordHash string
	CreatedAt    time.Time
}
