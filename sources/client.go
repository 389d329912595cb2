// sources/client.go
package sources

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/project-catalyst/catalyst-loader/config"
	"github.com/project-catalyst/catalyst-loader/models"
)

// Client fetches the public governance artifacts the push pipeline reads:
// the voter-tool challenges/proposals JSON files and the vCA aggregate
// assessments CSV. One Client is constructed at startup and injected.
type Client struct {
	cfg  config.SourcesConfig
	http *http.Client
}

func NewClient(cfg config.SourcesConfig) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getJSON fetches a URL and decodes its JSON body into out.
func (c *Client) getJSON(url string, out interface{}) error {
	resp, err := c.http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: received status code %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", url, err)
	}
	return nil
}

// FetchChallenges downloads the challenges.json file for the given fund
// from the voter-tool repository.
func (c *Client) FetchChallenges(fundNumber int) ([]models.RawChallenge, error) {
	url := fmt.Sprintf(c.cfg.ChallengesURLTemplate, fundNumber)
	log.Printf("Sources: requesting challenges for fund %d from %s\n", fundNumber, url)

	var challenges []models.RawChallenge
	if err := c.getJSON(url, &challenges); err != nil {
		return nil, fmt.Errorf("failed to fetch challenges for fund %d: %w", fundNumber, err)
	}
	log.Printf("Sources: fetched %d raw challenges for fund %d.\n", len(challenges), fundNumber)
	return challenges, nil
}

// FetchProposals downloads the proposals.json file for the given fund
// from the voter-tool repository.
func (c *Client) FetchProposals(fundNumber int) ([]models.RawProposal, error) {
	url := fmt.Sprintf(c.cfg.ProposalsURLTemplate, fundNumber)
	log.Printf("Sources: requesting proposals for fund %d from %s\n", fundNumber, url)

	var proposals []models.RawProposal
	if err := c.getJSON(url, &proposals); err != nil {
		return nil, fmt.Errorf("failed to fetch proposals for fund %d: %w", fundNumber, err)
	}
	log.Printf("Sources: fetched %d raw proposals for fund %d.\n", len(proposals), fundNumber)
	return proposals, nil
}
