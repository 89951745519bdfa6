package main

import (
	"context"
	"log"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/repository/implementation"
	"unsubly-be/pkg/cancellation/capability"

	"gorm.io/gorm"
)

// SeedProviders populates the provider registry with well-known providers.
// Upserts on normalized name, so re-running is safe.
func SeedProviders(ctx context.Context, db *gorm.DB) {
	providers := []entity.Provider{
		{
			Name: "Netflix", Category: "streaming",
			SupportsApi: true, SupportsAutomation: true,
			ApiSuccessRate: 0.92, AutomationSuccessRate: 0.85, ManualSuccessRate: 0.95,
			ApiEstimatedMinutes: 2, AutoEstimatedMinutes: 10, ManualEstimatedMins: 15,
			Difficulty:         entity.ProviderDifficultyEasy,
			HasRetentionOffers: true,
		},
		{
			Name: "Spotify", Category: "streaming",
			SupportsApi: true, SupportsAutomation: true,
			ApiSuccessRate: 0.9, AutomationSuccessRate: 0.82, ManualSuccessRate: 0.95,
			ApiEstimatedMinutes: 2, AutoEstimatedMinutes: 10, ManualEstimatedMins: 15,
			Difficulty: entity.ProviderDifficultyEasy,
		},
		{
			Name: "Disney Plus", Category: "streaming",
			SupportsApi: false, SupportsAutomation: true,
			AutomationSuccessRate: 0.78, ManualSuccessRate: 0.93,
			AutoEstimatedMinutes: 12, ManualEstimatedMins: 20,
			Difficulty:         entity.ProviderDifficultyMedium,
			HasRetentionOffers: true,
		},
		{
			Name: "Adobe Creative Cloud", Category: "software",
			SupportsApi: false, SupportsAutomation: true,
			AutomationSuccessRate: 0.72, ManualSuccessRate: 0.9,
			AutoEstimatedMinutes: 20, ManualEstimatedMins: 45,
			Difficulty:  entity.ProviderDifficultyHard,
			Requires2FA: true, HasRetentionOffers: true,
		},
		{
			Name: "Dropbox", Category: "software",
			SupportsApi: true, SupportsAutomation: false,
			ApiSuccessRate: 0.88, ManualSuccessRate: 0.94,
			ApiEstimatedMinutes: 3, ManualEstimatedMins: 20,
			Difficulty: entity.ProviderDifficultyEasy,
		},
		{
			Name: "Planet Fitness", Category: "utility",
			SupportsApi: false, SupportsAutomation: false,
			ManualSuccessRate:   0.85,
			ManualEstimatedMins: 60,
			Difficulty:          entity.ProviderDifficultyHard,
			HasRetentionOffers:  true,
		},
	}

	repo := implementation.NewProviderRepository(db)
	for i := range providers {
		p := &providers[i]
		p.NormalizedName = capability.Normalize(p.Name)
		if err := repo.Upsert(ctx, p); err != nil {
			log.Printf("Warn: Failed to seed provider %s: %v", p.Name, err)
			continue
		}
		log.Printf("Seeded provider: %s (%s)", p.Name, p.NormalizedName)
	}
}
