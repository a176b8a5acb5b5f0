package constants

import pkgconstants "fracton-backend/internal/pkg/constants"

// PermissionRoles maps each permission to the roles allowed to perform it.
// Supply-side administration stays with admins; trading is open to investors
// (admins can also trade for operational corrections).
var PermissionRoles = map[string][]string{
	CreateAsset:   {pkgconstants.Admin},
	ReviseNav:     {pkgconstants.Admin},
	MintTokens:    {pkgconstants.Admin},
	RevokeTokens:  {pkgconstants.Admin},
	AdjustBalance: {pkgconstants.Admin},
	FreezeToken:   {pkgconstants.Admin},
	ReviewOrder:   {pkgconstants.Admin},
	SetKycStatus:  {pkgconstants.Admin},
	FreezeAccount: {pkgconstants.Admin},
	PlaceOrder:    {pkgconstants.Investor, pkgconstants.Admin},
	FillOrder:     {pkgconstants.Investor, pkgconstants.Admin},
	CancelOrder:   {pkgconstants.Investor, pkgconstants.Admin},
	ViewLedger:    {pkgconstants.Investor, pkgconstants.Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
