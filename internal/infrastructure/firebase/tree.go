package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"resultscrawler/internal/ports"
)

// All crawler data lives under this node of the realtime database.
const dataRoot = "server/data"

// TreeStore talks to a Firebase realtime database through its REST surface:
// PATCH is a merge, PUT replaces, POST appends under a server-generated key.
type TreeStore struct {
	http    *resty.Client
	baseURL string
	token   string
}

var _ ports.TreeStore = (*TreeStore)(nil)

func NewTreeStore(client *resty.Client, baseURL, token string) *TreeStore {
	if client == nil {
		client = resty.New().SetTimeout(30 * time.Second)
	}
	return &TreeStore{http: client, baseURL: strings.TrimSuffix(baseURL, "/"), token: token}
}

func (s *TreeStore) nodeURL(path string) string {
	return fmt.Sprintf("%s/%s/%s.json", s.baseURL, dataRoot, strings.Trim(path, "/"))
}

func (s *TreeStore) request(ctx context.Context) *resty.Request {
	req := s.http.R().SetContext(ctx)
	if s.token != "" {
		req.SetQueryParam("auth", s.token)
	}
	return req
}

// Update merges fields into the node at path. Firebase treats slash-delimited
// keys as deep paths, which gives the multi-location student update.
func (s *TreeStore) Update(ctx context.Context, path string, fields map[string]any) error {
	resp, err := s.request(ctx).SetBody(fields).Patch(s.nodeURL(path))
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("update %s: firebase returned %s", path, resp.Status())
	}
	return nil
}

// Set replaces the node at path wholesale.
func (s *TreeStore) Set(ctx context.Context, path string, value any) error {
	resp, err := s.request(ctx).SetBody(value).Put(s.nodeURL(path))
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("set %s: firebase returned %s", path, resp.Status())
	}
	return nil
}

// Push appends value under path and returns the server-generated child key.
func (s *TreeStore) Push(ctx context.Context, path string, value any) (string, error) {
	resp, err := s.request(ctx).SetBody(value).Post(s.nodeURL(path))
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("push %s: firebase returned %s", path, resp.Status())
	}

	var reply struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return "", fmt.Errorf("push %s: decode reply: %w", path, err)
	}
	return reply.Name, nil
}
