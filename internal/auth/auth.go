package auth

import (
	"context"

	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"

	"github.com/stellarsoil/assistant/internal/chatdb"
)

// UserID returns the authenticated user's ID.
func UserID(ctx context.Context) string {
	return firebaseauth.TokenFromContext(ctx).UID
}

// UserRole returns the marketplace role claimed in the user's token.
// Accounts without a farmer claim chat as customers.
func UserRole(ctx context.Context) chatdb.Role {
	tok := firebaseauth.TokenFromContext(ctx)
	if role, ok := tok.Claims["role"].(string); ok && role == string(chatdb.RoleFarmer) {
		return chatdb.RoleFarmer
	}
	return chatdb.RoleCustomer
}
