package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// Shared
	PermissionWalletRead     = "wallet:read"
	PermissionWalletWrite    = "wallet:write"
	PermissionKYCSubmit      = "kyc:submit"
	PermissionChangePassword = "user:change-password"
	PermissionDisputeWrite   = "dispute:write"
	PermissionMessageWrite   = "message:write"

	// Host permissions
	PermissionEventWrite  = "event:write"
	PermissionEscrowWrite = "escrow:write"

	// Organizer permissions
	PermissionPoolWrite = "pool:write"

	// Gig permissions
	PermissionPoolApply = "pool:apply"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	common := []string{
		PermissionWalletRead,
		PermissionWalletWrite,
		PermissionKYCSubmit,
		PermissionChangePassword,
		PermissionDisputeWrite,
		PermissionMessageWrite,
	}

	switch role {
	case RoleAdmin:
		return []string{
			PermissionReadAdmin,
			PermissionWriteAdmin,
			PermissionChangePassword,
			PermissionMessageWrite,
		}
	case RoleHost:
		return append(common, PermissionEventWrite, PermissionEscrowWrite)
	case RoleOrganizer:
		return append(common, PermissionPoolWrite)
	case RoleGig:
		return append(common, PermissionPoolApply)
	default:
		return []string{}
	}
}
