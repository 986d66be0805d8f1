package utils

import (
	"slices"

	"github.com/GbredngleK/NG-Insider-Bot/model"
)

// Authorizer decides who may use moderator actions.
type Authorizer struct {
	developers []string
	adminRoles []string
}

func NewAuthorizer(auth model.Auth) *Authorizer {
	return &Authorizer{developers: auth.Developers, adminRoles: auth.AdminRoles}
}

// CheckAuth 检查用户是否有权限
func (a *Authorizer) CheckAuth(userID string, roles []string) bool {
	// 检查是否为开发者
	if slices.Contains(a.developers, userID) {
		return true
	}

	// 检查是否拥有管理员角色
	for _, role := range roles {
		if slices.Contains(a.adminRoles, role) {
			return true
		}
	}

	return false
}

// IsModeratorID reports whether userID is a configured moderator regardless of roles.
func (a *Authorizer) IsModeratorID(userID string) bool {
	return slices.Contains(a.developers, userID)
}
