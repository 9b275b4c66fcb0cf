package store

import (
	"context"
	"log"
	"os"

	"github.com/nexsys-it/protego-backend/api/models"
)

func seedProviders() []models.ProviderCredential {
	return []models.ProviderCredential{
		{
			Name:     "RAK Insurance",
			BaseURL:  "https://uat-connect.rakinsurance.com",
			AuthPath: "/login/authenticate",
			Token: &models.TokenCredential{
				Username:     os.Getenv("RAK_USER_NAME"),
				Password:     os.Getenv("RAK_PASSWORD"),
				PartnerID:    "RAKUSERAPI",
				LocationCode: "20",
			},
		},
		{
			Name:     "Gulf Insurance",
			BaseURL:  "https://gulf-insurance-pp.eu.auth0.com",
			AuthPath: "/oauth/token",
			OAuth: &models.OAuthCredential{
				GrantType:    "client_credentials",
				ClientID:     os.Getenv("GULF_CLIENT_ID"),
				ClientSecret: os.Getenv("GULF_CLIENT_SECRET"),
				Audience:     "integration-platform",
			},
		},
		{
			Name:     "Liva Insurance",
			BaseURL:  "https://uatproductsvc.livainsurance.ae",
			AuthPath: "/auth-token",
			OAuth: &models.OAuthCredential{
				GrantType:    "client_credentials",
				ClientID:     os.Getenv("LIVA_CLIENT_ID"),
				ClientSecret: os.Getenv("LIVA_CLIENT_SECRET"),
				Scope:        os.Getenv("LIVA_SCOPE"),
				Headers: map[string]string{
					"Location":        os.Getenv("LIVA_LOCATION"),
					"AuthKey":         os.Getenv("LIVA_AUTHKEY"),
					"Language":        os.Getenv("LIVA_LANGUAGE"),
					"PartnerID":       os.Getenv("LIVA_PARTNERID"),
					"SubscriptionKey": os.Getenv("LIVA_SUBSCRIPTIONKEY"),
				},
			},
		},
	}
}

// SeedProviderCredentials writes the configured provider credentials into
// the store on startup, skipping any provider that is already present so
// that live tokens are not clobbered across restarts.
func SeedProviderCredentials(ctx context.Context, s *RedisCredentialStore) error {
	for _, cred := range seedProviders() {
		cred := cred
		exists, err := s.Exists(ctx, cred.Name)
		if err != nil {
			return err
		}
		if exists {
			log.Printf("[SEED] Provider already exists: %s", cred.Name)
			continue
		}
		if err := s.Save(ctx, &cred); err != nil {
			return err
		}
		log.Printf("[SEED] Added provider: %s", cred.Name)
	}
	return nil
}
