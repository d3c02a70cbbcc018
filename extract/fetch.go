package extract

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanasc4/data-integration/config"
	"github.com/hashicorp/go-retryablehttp"
)

// Fetcher downloads a resource and returns its body.
type Fetcher interface {
	FetchData(url, description string) ([]byte, error)
}

// ITBIClient downloads the yearly ITBI extracts from the Recife open data portal.
type ITBIClient struct {
	HTTPClient *retryablehttp.Client
	Logger     *slog.Logger
}

// NewITBIClient builds a client with the retry and backoff settings of the extract config.
func NewITBIClient(config *config.Config, logger *slog.Logger) *ITBIClient {
	client := &ITBIClient{
		HTTPClient: retryablehttp.NewClient(),
		Logger:     logger,
	}

	// RetryMax defaults to 0, a failing year is skipped
	client.HTTPClient.RetryWaitMin = config.Extract.Backoff.RetryWaitMin
	client.HTTPClient.RetryWaitMax = config.Extract.Backoff.RetryWaitMax
	client.HTTPClient.RetryMax = config.Extract.Backoff.RetryMax
	client.HTTPClient.Logger = logger

	return client
}

// FetchData handles the common logic of making the HTTP request and checking the response status
func (c *ITBIClient) FetchData(url, description string) ([]byte, error) {
	body, resp, err := c.get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the `%s` file: %w", description, err)
	}

	// The body is kept in the error message
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch the `%s` file, status: %s, body: %s", description, resp.Status, string(body))
	}

	c.Logger.Debug(fmt.Sprintf("Fetched %s", description), "bytes", len(body))
	return body, nil
}

// get fetches the URL and returns the body and response
func (c *ITBIClient) get(url string) (body []byte, resp *http.Response, err error) {
	resp, err = c.HTTPClient.Get(url)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	// Read the whole response body
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return body, resp, nil
}
