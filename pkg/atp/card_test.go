package atp

import (
	"testing"

	"github.com/tj/assert"
)

func TestAgentCardString(t *testing.T) {
	description := "plans trips end to end"
	credentials := "svc-secret"
	providerURL := "https://agents.example"

	card := &AgentCard{
		Name:        "Travel Planner",
		Description: &description,
		URL:         "http://agent.example/rpc",
		Version:     "2.1.0",
		Provider:    &AgentProvider{Organization: "Example Agents", URL: &providerURL},
		Authentication: &AgentAuthentication{
			Schemes:     []string{"bearer"},
			Credentials: &credentials,
		},
		Skills: []AgentSkill{
			{ID: "plan", Name: "Trip planning", Tags: []string{"travel"}},
		},
	}

	out := card.String()
	assert.Contains(t, out, "Travel Planner")
	assert.Contains(t, out, "2.1.0")
	assert.Contains(t, out, "Example Agents")
	assert.Contains(t, out, "Trip planning")
	assert.Contains(t, out, "bearer")

	// Credentials are masked, never echoed
	assert.NotContains(t, out, "svc-secret")
	assert.Contains(t, out, "*****")
}

func TestAgentCardStringMinimal(t *testing.T) {
	card := &AgentCard{Name: "Bare Agent", URL: "http://agent.example/rpc", Version: "0.1.0"}

	out := card.String()
	assert.Contains(t, out, "Bare Agent")
	assert.NotContains(t, out, "Provider")
	assert.NotContains(t, out, "Skills")
}
