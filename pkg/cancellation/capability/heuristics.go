package capability

import (
	"strings"
	"time"

	"unsubly-be/internal/entity"
)

// providerClass buckets unknown providers by what their name suggests.
type providerClass string

const (
	classStreaming providerClass = "streaming"
	classSoftware  providerClass = "software"
	classUtility   providerClass = "utility"
	classOther     providerClass = "other"
)

var classKeywords = map[providerClass][]string{
	classStreaming: {
		"netflix", "hulu", "spotify", "disney", "hbo", "max", "youtube",
		"twitch", "audible", "paramount", "peacock", "crunchyroll", "deezer",
		"tidal", "music", "stream", "tv", "play",
	},
	classSoftware: {
		"adobe", "microsoft", "office", "dropbox", "github", "slack", "zoom",
		"notion", "figma", "canva", "atlassian", "jetbrains", "cloud", "saas",
		"software", "app", "pro",
	},
	classUtility: {
		"electric", "gas", "water", "internet", "phone", "mobile", "telecom",
		"insurance", "utility", "energy", "broadband", "fiber", "wireless",
	},
}

// classify matches the normalized provider name against the keyword sets.
// Streaming wins over software wins over utility when several match.
func classify(normalized string) providerClass {
	for _, class := range []providerClass{classStreaming, classSoftware, classUtility} {
		for _, keyword := range classKeywords[class] {
			if strings.Contains(normalized, keyword) {
				return class
			}
		}
	}
	return classOther
}

// heuristicProfile holds the per-class defaults a heuristic capability is
// assembled from.
type heuristicProfile struct {
	difficulty         entity.ProviderDifficulty
	supportsAutomation bool
	automationRate     float64
	autoMinutes        int
	manualMinutes      int
	hasRetentionOffers bool
}

var classProfiles = map[providerClass]heuristicProfile{
	classStreaming: {
		difficulty:         entity.ProviderDifficultyEasy,
		supportsAutomation: true,
		automationRate:     0.75,
		autoMinutes:        10,
		manualMinutes:      15,
		hasRetentionOffers: true,
	},
	classSoftware: {
		difficulty:         entity.ProviderDifficultyMedium,
		supportsAutomation: true,
		automationRate:     0.65,
		autoMinutes:        20,
		manualMinutes:      25,
		hasRetentionOffers: true,
	},
	classUtility: {
		difficulty:         entity.ProviderDifficultyHard,
		supportsAutomation: false,
		automationRate:     0,
		autoMinutes:        0,
		manualMinutes:      45,
		hasRetentionOffers: false,
	},
	classOther: {
		difficulty:         entity.ProviderDifficultyMedium,
		supportsAutomation: false,
		automationRate:     0,
		autoMinutes:        0,
		manualMinutes:      30,
		hasRetentionOffers: false,
	},
}

const heuristicManualRate = 0.9

// heuristicCapability derives a capability snapshot purely from the
// provider's name. Manual support is always on; API support is never
// assumed without registry data.
func heuristicCapability(providerName, normalized string, now time.Time, ttl time.Duration) *entity.ProviderCapability {
	profile := classProfiles[classify(normalized)]

	return &entity.ProviderCapability{
		ProviderName:          providerName,
		NormalizedName:        normalized,
		SupportsApi:           false,
		SupportsAutomation:    profile.supportsAutomation,
		SupportsManual:        true,
		ApiSuccessRate:        0,
		AutomationSuccessRate: profile.automationRate,
		ManualSuccessRate:     heuristicManualRate,
		ApiEstimatedMinutes:   0,
		AutoEstimatedMinutes:  profile.autoMinutes,
		ManualEstimatedMins:   profile.manualMinutes,
		Difficulty:            profile.difficulty,
		Requires2FA:           false,
		HasRetentionOffers:    profile.hasRetentionOffers,
		DataSource:            entity.CapabilitySourceHeuristic,
		LastAssessed:          now,
		ExpiresAt:             now.Add(ttl),
	}
}
