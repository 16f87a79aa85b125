package blogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrFetchFailed signals that the blog API responded with a non-success
// status or was unreachable. Callers decide whether to retry; this client
// never does.
var ErrFetchFailed = errors.New("failed to fetch post from blog API")

// Client is a minimal client for the blog platform's post lookup endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchText returns the full text body of the post with the given id.
func (c *Client) FetchText(ctx context.Context, postID int64) (string, error) {
	url := fmt.Sprintf("%s/api/posts/%d", c.baseURL, postID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status code %d", ErrFetchFailed, resp.StatusCode)
	}

	var post struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrFetchFailed, err)
	}

	return post.Text, nil
}
