package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/atp-go/pkg/atp"
	rpcerrors "github.com/theapemachine/atp-go/pkg/errors"
)

// wellKnownCardPath is where agents publish their card.
const wellKnownCardPath = "/.well-known/agent.json"

/*
Discover fetches the agent card published next to the RPC endpoint.
Discovery usually runs at startup, when the agent may still be coming
up, so the fetch retries with backoff before giving up.
*/
func (client *AgentClient) Discover(ctx context.Context) (*atp.AgentCard, error) {
	cardURL, err := client.cardURL()

	if err != nil {
		return nil, &NetworkError{Op: "discover", Err: err}
	}

	log.Debug("fetching agent card", "url", cardURL)

	card := new(atp.AgentCard)

	err = rpcerrors.RetryWithBackoff(rpcerrors.DefaultRetryConfig(), func() error {
		return client.fetchCard(ctx, cardURL, card)
	})

	if err != nil {
		return nil, err
	}

	log.Debug("discovered agent", "name", card.Name, "version", card.Version)

	return card, nil
}

// cardURL swaps the RPC endpoint's path for the well-known card path.
func (client *AgentClient) cardURL() (string, error) {
	parsed, err := url.Parse(client.rpcURL)

	if err != nil {
		return "", err
	}

	parsed.Path = wellKnownCardPath
	parsed.RawQuery = ""

	return parsed.String(), nil
}

func (client *AgentClient) fetchCard(ctx context.Context, cardURL string, card *atp.AgentCard) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)

	if err != nil {
		return &NetworkError{Op: "discover", Err: err}
	}

	resp, err := client.httpClient.Do(req)

	if err != nil {
		return &NetworkError{Op: "discover", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)

		return &NetworkError{
			Op:  "discover",
			Err: fmt.Errorf("agent card endpoint returned %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(card); err != nil {
		return &ParseError{Err: err}
	}

	return nil
}
