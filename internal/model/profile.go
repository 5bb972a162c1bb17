package model

import (
	"time"

	"github.com/sportmaps/sportmaps-server/internal/rbac"
)

// Subscription tiers available to a profile.
const (
	TierFree       = "free"
	TierBasic      = "basic"
	TierPremium    = "premium"
	TierEnterprise = "enterprise"
)

// Profile represents a row in the `profiles` table: the application-owned
// record describing one identity.  Exactly one profile exists per identity
// (same id).  Profiles are created lazily on first session resolution and
// are never hard-deleted.
//
// Fields:
//  ID               – equals the identity uuid.
//  FullName         – display name; "Usuario" when sign-up gave none.
//  Phone            – optional contact number.
//  Role             – closed role enumeration; drives all authorization.
//  AvatarURL        – optional avatar location.
//  Bio              – optional free-form description.
//  DateOfBirth      – optional, date only.
//  SportmapsPoints  – loyalty points balance, never negative.
//  SubscriptionTier – free/basic/premium/enterprise.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – stamped on every update.
type Profile struct {
	ID               string
	FullName         string
	Phone            *string
	Role             rbac.Role
	AvatarURL        *string
	Bio              *string
	DateOfBirth      *time.Time
	SportmapsPoints  int
	SubscriptionTier string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProfileFields carries the optional attributes accepted when creating or
// updating a profile.  Nil pointers mean "leave unset" / "do not change".
type ProfileFields struct {
	FullName         *string
	Phone            *string
	Role             *rbac.Role
	AvatarURL        *string
	Bio              *string
	DateOfBirth      *time.Time
	SubscriptionTier *string
}
