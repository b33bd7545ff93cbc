// Package domain contains core concepts of the chat system.
// This file defines Group entities and membership invariants.
package domain

import (
	"slices"
	"time"
)

// Group is a named conversation with a fixed admin and a member list.
// The admin is always a member; removing the admin is forbidden.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AdminID     string    `json:"admin"`
	ImageURL    string    `json:"groupImage,omitempty"`
	MemberIDs   []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (g Group) IsAdmin(userID string) bool {
	return g.AdminID == userID
}

func (g Group) IsMember(userID string) bool {
	return slices.Contains(g.MemberIDs, userID)
}

// AddMember appends the user if absent. Idempotent.
func (g *Group) AddMember(userID string) {
	if !g.IsMember(userID) {
		g.MemberIDs = append(g.MemberIDs, userID)
	}
}

// RemoveMember drops the user from the member list. No-op for non-members.
func (g *Group) RemoveMember(userID string) {
	g.MemberIDs = slices.DeleteFunc(g.MemberIDs, func(id string) bool {
		return id == userID
	})
}
