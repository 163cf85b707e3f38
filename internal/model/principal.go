package model

import "strings"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleWorker Role = "worker"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleOwner:
		return RoleOwner, true
	case RoleWorker:
		return RoleWorker, true
	default:
		return "", false
	}
}

type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner
}
