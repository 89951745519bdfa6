package entity

import (
	"time"

	"github.com/google/uuid"
)

type ProviderDifficulty string

const (
	ProviderDifficultyEasy   ProviderDifficulty = "easy"
	ProviderDifficultyMedium ProviderDifficulty = "medium"
	ProviderDifficultyHard   ProviderDifficulty = "hard"
)

// Provider is a persisted registry entry describing how a known provider
// (Netflix, Spotify, ...) can be cancelled and how well each channel has
// historically performed.
type Provider struct {
	Id                    uuid.UUID
	Name                  string
	NormalizedName        string
	Category              string
	SupportsApi           bool
	SupportsAutomation    bool
	ApiSuccessRate        float64
	AutomationSuccessRate float64
	ManualSuccessRate     float64
	ApiEstimatedMinutes   int
	AutoEstimatedMinutes  int
	ManualEstimatedMins   int
	Difficulty            ProviderDifficulty
	Requires2FA           bool
	HasRetentionOffers    bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
