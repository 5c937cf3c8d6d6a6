package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"discord-music-bot/pkg/throttle"
)

const defaultAPIBase = "https://www.googleapis.com/youtube/v3"

// APIError is a non-success response from the YouTube Data API.
type APIError struct {
	Status  int
	Code    int
	Message string
	Reason  string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube api: %d %s (%s)", e.Code, e.Message, e.Reason)
	}
	return fmt.Sprintf("youtube api: %d %s", e.Code, e.Message)
}

// Throttled reports whether the API refused the call for rate or quota
// reasons.
func (e *APIError) Throttled() bool {
	switch e.Reason {
	case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
		return true
	}
	return e.Status == http.StatusTooManyRequests
}

// APIClient talks to the YouTube Data API v3 with a key.
type APIClient struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
	limiter *throttle.AdaptiveLimiter
}

// NewAPIClient builds a client limited to rps requests per second. The
// rate drops when the API reports throttling. A non-positive rps disables
// limiting.
func NewAPIClient(key string, httpClient *http.Client, rps float64) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}
	return &APIClient{
		BaseURL: defaultAPIBase,
		Key:     key,
		HTTP:    httpClient,
		limiter: throttle.New(rps, rps/10, rps/10),
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title      string `json:"title"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// Search returns the first matching video ID, or ErrNoResults.
func (c *APIClient) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"part":       {"id"},
		"type":       {"video"},
		"maxResults": {"1"},
		"q":          {query},
	}

	var resp searchResponse
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return "", err
	}
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			return item.ID.VideoID, nil
		}
	}
	return "", ErrNoResults
}

// PlaylistItems fetches one page (up to 50 entries) of a playlist.
func (c *APIClient) PlaylistItems(ctx context.Context, playlistID, pageToken string) (Page, error) {
	params := url.Values{
		"part":       {"snippet"},
		"maxResults": {"50"},
		"playlistId": {playlistID},
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp playlistItemsResponse
	if err := c.get(ctx, "playlistItems", params, &resp); err != nil {
		return Page{}, err
	}

	page := Page{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		page.Items = append(page.Items, PlaylistItem{
			VideoID: item.Snippet.ResourceID.VideoID,
			Title:   item.Snippet.Title,
		})
	}
	return page, nil
}

func (c *APIClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.Key)
	u := strings.TrimRight(c.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode, Code: resp.StatusCode, Message: resp.Status}
		var body errorResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error.Code != 0 {
			apiErr.Code = body.Error.Code
			apiErr.Message = body.Error.Message
			if len(body.Error.Errors) > 0 {
				apiErr.Reason = body.Error.Errors[0].Reason
			}
		}
		if apiErr.Throttled() {
			c.limiter.Throttled()
		}
		return apiErr
	}
	c.limiter.Success()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube api %s: decode: %w", endpoint, err)
	}
	return nil
}
