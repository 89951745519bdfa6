package strategy

import (
	"testing"

	"unsubly-be/internal/entity"
	"unsubly-be/pkg/cancellation"

	"github.com/stretchr/testify/assert"
)

func TestSelectMethod(t *testing.T) {
	tests := []struct {
		name       string
		capability *entity.ProviderCapability
		preferred  string
		want       entity.CancellationMethod
	}{
		{
			name: "explicit preference wins when supported",
			capability: &entity.ProviderCapability{
				SupportsApi: true, SupportsAutomation: true, SupportsManual: true,
				ApiSuccessRate: 0.99,
			},
			preferred: "automation",
			want:      entity.CancellationMethodAutomation,
		},
		{
			name: "explicit preference ignored when unsupported",
			capability: &entity.ProviderCapability{
				SupportsApi: true, SupportsManual: true,
				ApiSuccessRate: 0.9,
			},
			preferred: "automation",
			want:      entity.CancellationMethodApi,
		},
		{
			name: "auto picks api on strong track record",
			capability: &entity.ProviderCapability{
				SupportsApi: true, SupportsManual: true,
				ApiSuccessRate: 0.9,
			},
			preferred: "auto",
			want:      entity.CancellationMethodApi,
		},
		{
			name: "api at threshold is not enough",
			capability: &entity.ProviderCapability{
				SupportsApi: true, SupportsManual: true,
				ApiSuccessRate: 0.85,
			},
			preferred: "auto",
			want:      entity.CancellationMethodManual,
		},
		{
			name: "automation on 2fa even with weak rate",
			capability: &entity.ProviderCapability{
				SupportsAutomation: true, SupportsManual: true,
				AutomationSuccessRate: 0.3, Requires2FA: true,
			},
			preferred: "",
			want:      entity.CancellationMethodAutomation,
		},
		{
			name: "automation on retention offers",
			capability: &entity.ProviderCapability{
				SupportsAutomation: true, SupportsManual: true,
				AutomationSuccessRate: 0.3, HasRetentionOffers: true,
			},
			preferred: "",
			want:      entity.CancellationMethodAutomation,
		},
		{
			name: "automation on hard difficulty",
			capability: &entity.ProviderCapability{
				SupportsAutomation: true, SupportsManual: true,
				Difficulty: entity.ProviderDifficultyHard,
			},
			preferred: "",
			want:      entity.CancellationMethodAutomation,
		},
		{
			name: "automation on rate alone",
			capability: &entity.ProviderCapability{
				SupportsAutomation: true, SupportsManual: true,
				AutomationSuccessRate: 0.75,
			},
			preferred: "",
			want:      entity.CancellationMethodAutomation,
		},
		{
			name: "manual as universal fallback",
			capability: &entity.ProviderCapability{
				SupportsManual: true,
			},
			preferred: "",
			want:      entity.CancellationMethodManual,
		},
		{
			name: "weak api with weak automation lands on manual",
			capability: &entity.ProviderCapability{
				SupportsApi: true, SupportsAutomation: true, SupportsManual: true,
				ApiSuccessRate: 0.5, AutomationSuccessRate: 0.5,
			},
			preferred: "auto",
			want:      entity.CancellationMethodManual,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectMethod(tt.capability, tt.preferred, cancellation.DefaultPreferences())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectMethodIsDeterministic(t *testing.T) {
	capability := &entity.ProviderCapability{
		SupportsApi: true, SupportsAutomation: true, SupportsManual: true,
		ApiSuccessRate: 0.86, AutomationSuccessRate: 0.71,
	}
	first := SelectMethod(capability, "auto", cancellation.DefaultPreferences())
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, SelectMethod(capability, "auto", cancellation.DefaultPreferences()))
	}
}

func TestSelectMethodUsesPreferencesWhenNoExplicitMethod(t *testing.T) {
	capability := &entity.ProviderCapability{
		SupportsApi: true, SupportsAutomation: true, SupportsManual: true,
		ApiSuccessRate: 0.95,
	}
	prefs := &cancellation.Preferences{PreferredMethod: "automation", AllowFallback: true}

	assert.Equal(t, entity.CancellationMethodAutomation, SelectMethod(capability, "", prefs))
}
