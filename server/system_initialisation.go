package server

import (
	"context"
	"fmt"
)

// InitialiseSystem grants the admin role to every configured admin identity.
// Identities that have never signed in get a placeholder record; their first
// sign-in fills the profile and keeps the role.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	for _, externalID := range s.config.GetAdminExternalIDs() {
		user, err := s.directory.EnsureAdmin(ctx, externalID)
		if err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to ensure admin %q: %w", externalID, err)
		}
		s.logger.Info().
			Str("external_id", user.ExternalID).
			Bool("signed_in", user.Email != "").
			Msg("admin ensured")
	}
	return nil
}
