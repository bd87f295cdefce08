package docparse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"resultscrawler/internal/domain"
	"resultscrawler/internal/ports"
)

// Client reaches the external document-parsing service over HTTP. The service
// receives raw PDF bytes and answers with the subjects and person records it
// extracted; its internals are opaque to the crawler.
type Client struct {
	http    *resty.Client
	baseURL string
}

var _ ports.DocumentParser = (*Client)(nil)

func New(client *resty.Client, baseURL string) *Client {
	if client == nil {
		client = resty.New().SetTimeout(120 * time.Second)
	}
	return &Client{http: client, baseURL: baseURL}
}

type parseResponse struct {
	Subjects domain.SubjectMap     `json:"subjects"`
	Results  []domain.PersonRecord `json:"results"`
}

// Parse submits the payload and decodes the structured reply. Any transport
// or decode failure means no records were produced for this payload.
func (c *Client) Parse(ctx context.Context, payload []byte) (domain.SubjectMap, []domain.PersonRecord, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/pdf").
		SetBody(payload).
		Post(c.baseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parser request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, nil, fmt.Errorf("parser returned %s", resp.Status())
	}

	var parsed parseResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, nil, fmt.Errorf("decode parser response: %w", err)
	}

	return parsed.Subjects, parsed.Results, nil
}
