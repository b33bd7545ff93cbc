// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// User is the public view of an account. Credentials never leave the
// repository layer.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"profilePic,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
