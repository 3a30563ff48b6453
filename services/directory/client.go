package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/campuskit/tokenauth/config"
	"github.com/campuskit/tokenauth/services/logging"
	"go.uber.org/zap"
)

// Client resolves principals over the directory service's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Service
}

func NewClient(cfg *config.Config, logger *logging.Service) *Client {
	return &Client{
		baseURL: cfg.Directory.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Directory.Timeout,
		},
		logger: logger,
	}
}

func (c *Client) LookupPrincipal(ctx context.Context, identifier string, kind PrincipalKind) (*Principal, error) {
	if !kind.Valid() {
		return nil, ErrUnknownPrincipalKind
	}

	endpoint := fmt.Sprintf("%s/principals/%s?identifier=%s",
		c.baseURL, kind, url.QueryEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("directory lookup request failed",
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrPrincipalNotFound
	default:
		if c.logger != nil {
			c.logger.Error("directory lookup returned unexpected status",
				zap.String("kind", string(kind)),
				zap.Int("status", resp.StatusCode))
		}
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var principal Principal
	if err := json.NewDecoder(resp.Body).Decode(&principal); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	if principal.ID == "" || principal.HashedSecret == "" {
		return nil, fmt.Errorf("%w: incomplete principal record", ErrUnavailable)
	}

	return &principal, nil
}
