package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/tj/assert"
)

func TestBuildAgentClient(t *testing.T) {
	defer viper.Reset()

	viper.Set("endpoints.agent", "http://127.0.0.1:3780/rpc")
	viper.Set("auth.bearer_token", "tok")
	viper.Set("client.rate_limit", 30)

	agent, err := buildAgentClient()
	assert.NoError(t, err)
	assert.NotNil(t, agent)
}

func TestBuildAgentClientNoEndpoint(t *testing.T) {
	defer viper.Reset()

	agent, err := buildAgentClient()
	assert.Error(t, err)
	assert.Nil(t, agent)
}
