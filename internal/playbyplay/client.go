// Package playbyplay recovers external video identifiers from the live game
// feed when the bulk source did not carry one.
package playbyplay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/user/swordfinder/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client queries the live feed of one game and matches a pitch by inning and
// pitch sequence number.
type Client struct {
	base   string
	http   *http.Client
	logger logger.Logger
}

// NewClient creates a lookup client against the given API base URL.
func NewClient(base string, opts ...Option) *Client {
	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logger.Get().Named("playbyplay"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// liveFeed mirrors the slice of the feed document we read. Unknown fields
// are ignored.
type liveFeed struct {
	LiveData struct {
		Plays struct {
			AllPlays []struct {
				About struct {
					Inning int `json:"inning"`
				} `json:"about"`
				PlayEvents []struct {
					PitchNumber int    `json:"pitchNumber"`
					PlayID      string `json:"playId"`
					UUID        string `json:"uuid"`
				} `json:"playEvents"`
			} `json:"allPlays"`
		} `json:"plays"`
	} `json:"liveData"`
}

// LookupPlayID returns the video identifier for (gamePK, inning, pitchNumber).
// Returns ErrNotFound when the feed has no matching pitch or carries no
// identifier for it.
func (c *Client) LookupPlayID(ctx context.Context, gamePK int64, inning, pitchNumber int) (string, error) {
	url := fmt.Sprintf("%s/api/v1.1/game/%d/feed/live", c.base, gamePK)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build feed request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch game feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("game feed returned status %d", resp.StatusCode)
	}

	var feed liveFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return "", fmt.Errorf("decode game feed: %w", err)
	}

	for _, play := range feed.LiveData.Plays.AllPlays {
		if play.About.Inning != inning {
			continue
		}
		for _, event := range play.PlayEvents {
			if event.PitchNumber != pitchNumber {
				continue
			}
			id := event.PlayID
			if id == "" {
				id = event.UUID
			}
			if id != "" {
				c.logger.Debug(ctx, "matched play id",
					logger.Int64("gamePK", gamePK),
					logger.Int("inning", inning),
					logger.Int("pitchNumber", pitchNumber),
					logger.String("playID", id),
				)
				return id, nil
			}
		}
	}
	return "", ErrNotFound
}
