package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/fieldside/rightsdesk/internal/config"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	"github.com/fieldside/rightsdesk/internal/pricing/domain"
)

type client struct {
	baseURL  string
	token    string
	platform *config.PlatformConfigHolder
	client   *http.Client
}

func NewClient(cfg config.Config, platform *config.PlatformConfigHolder) domain.SignalClient {
	timeout := time.Duration(cfg.SignalTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &client{
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.SignalBaseURL), "/"),
		token:    cfg.SignalToken,
		platform: platform,
		client:   &http.Client{Timeout: timeout},
	}
}

type suggestRequest struct {
	EventID  string  `json:"eventId"`
	SportID  string  `json:"sportId"`
	LeagueID *string `json:"leagueId,omitempty"`
	Season   *string `json:"season,omitempty"`
	StartAt  string  `json:"startAt"`
}

type suggestResponse struct {
	Tier  string  `json:"tier"`
	Price float64 `json:"price"`
}

// Suggest asks the advisory service for a tier and price. The returned
// price is clamped to the platform bounds; the upstream value is advisory,
// never authoritative.
func (c *client) Suggest(ctx context.Context, req domain.SignalRequest) (*domain.SignalResult, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("pricing signal url not configured")
	}

	body := suggestRequest{
		EventID: req.EventID.String(),
		SportID: req.SportID.String(),
		Season:  req.Season,
		StartAt: req.StartAt.UTC().Format(time.RFC3339),
	}
	if req.LeagueID != nil {
		leagueID := req.LeagueID.String()
		body.LeagueID = &leagueID
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, payload)
	if err != nil {
		// One retry on transport error; validation-shaped failures below
		// are terminal.
		resp, err = c.post(ctx, payload)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricing signal returned status %d", resp.StatusCode)
	}

	var parsed suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode pricing signal response: %w", err)
	}

	tier := pricetierdomain.Tier(strings.ToLower(strings.TrimSpace(parsed.Tier)))
	if !pricetierdomain.ValidTier(tier) {
		tier = pricetierdomain.Tier(c.platform.Get().DefaultTier)
	}

	return &domain.SignalResult{
		Tier:       tier,
		PriceCents: c.clamp(int64(math.Round(parsed.Price * 100))),
	}, nil
}

func (c *client) post(ctx context.Context, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/suggest", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.client.Do(req)
}

func (c *client) clamp(priceCents int64) int64 {
	bounds := c.platform.Get()
	if priceCents < bounds.MinPriceCents {
		return bounds.MinPriceCents
	}
	if priceCents > bounds.MaxPriceCents {
		return bounds.MaxPriceCents
	}
	return priceCents
}
