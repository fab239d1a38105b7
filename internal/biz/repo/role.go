package repo

import "context"

// RoleRepo manages membership of the subscription role users opt into to
// receive supply notifications.
type RoleRepo interface {
	// Grant adds the role to a guild member. Granting an already held
	// role is not an error.
	Grant(ctx context.Context, guildID, userID, roleID string) error

	// Revoke removes the role from a guild member. Revoking a role the
	// member does not hold is not an error.
	Revoke(ctx context.Context, guildID, userID, roleID string) error
}
