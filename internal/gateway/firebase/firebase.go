// Package firebase implements gateway.Gateway against the Firebase Realtime Database REST API.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/at-ishikawa/pobcards/internal/gateway"
)

const sharedDecksPath = "shared_safmeds"

// Gateway reads <base>/<path>.json, authenticating with the auth query parameter.
type Gateway struct {
	httpClient *resty.Client
}

var _ gateway.Gateway = (*Gateway)(nil)

// New creates a client for the database at baseURL, e.g. https://project.firebaseio.com.
// An empty token sends unauthenticated requests.
func New(baseURL, token string, timeout time.Duration) *Gateway {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetQueryParam("auth", token)
	}
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Gateway{httpClient: client}
}

func (g *Gateway) Close() error {
	return g.httpClient.Close()
}

func (g *Gateway) FetchChapters(ctx context.Context) ([]gateway.Chapter, error) {
	raw, err := g.get(ctx, "/chapters.json", nil)
	if err != nil {
		return nil, gateway.Unavailable("firebase.FetchChapters", err)
	}
	chapters, err := decodeCollection[gateway.Chapter](raw)
	if err != nil {
		return nil, gateway.Unavailable("firebase.FetchChapters", err)
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Chapter < chapters[j].Chapter
	})
	return chapters, nil
}

func (g *Gateway) FetchTerms(ctx context.Context, chapter int) ([]gateway.Term, error) {
	raw, err := g.get(ctx, "/terms.json", map[string]string{
		"orderBy": `"chapter"`,
		"equalTo": strconv.Itoa(chapter),
	})
	if err != nil {
		return nil, gateway.Unavailable("firebase.FetchTerms", err)
	}
	terms, err := decodeCollection[gateway.Term](raw)
	if err != nil {
		return nil, gateway.Unavailable("firebase.FetchTerms", err)
	}
	return terms, nil
}

func (g *Gateway) FetchScoreHistory(ctx context.Context, userID string, chapter, limit int) (map[string]gateway.RawScore, error) {
	raw, err := g.get(ctx, scoresPath(userID, chapter)+".json", map[string]string{
		"orderBy":     `"$key"`,
		"limitToLast": strconv.Itoa(limit),
	})
	if err != nil {
		return nil, gateway.Unavailable("firebase.FetchScoreHistory", err)
	}

	history := map[string]gateway.RawScore{}
	if isNull(raw) {
		return history, nil
	}
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, gateway.Unavailable("firebase.FetchScoreHistory", fmt.Errorf("json.Unmarshal() > %w", err))
	}
	return history, nil
}

func (g *Gateway) WriteScore(ctx context.Context, userID string, chapter int, key string, record gateway.ScoreRecord) error {
	path := fmt.Sprintf("%s/%s.json", scoresPath(userID, chapter), url.PathEscape(key))
	if err := g.put(ctx, path, record); err != nil {
		return gateway.Unavailable("firebase.WriteScore", err)
	}
	return nil
}

func (g *Gateway) WriteSharedDeck(ctx context.Context, key string, record gateway.ShareRecord) error {
	if err := g.put(ctx, sharedDeckPath(key), record); err != nil {
		return gateway.Unavailable("firebase.WriteSharedDeck", err)
	}
	return nil
}

// ReadSharedDeck returns gateway.ErrNotFound when nothing is stored under key.
func (g *Gateway) ReadSharedDeck(ctx context.Context, key string) (gateway.ShareRecord, error) {
	op := fmt.Sprintf("firebase.ReadSharedDeck(%s)", key)
	raw, err := g.get(ctx, sharedDeckPath(key), nil)
	if err != nil {
		return gateway.ShareRecord{}, gateway.Unavailable(op, err)
	}
	if isNull(raw) {
		return gateway.ShareRecord{}, gateway.NotFound(op, nil)
	}

	var record gateway.ShareRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return gateway.ShareRecord{}, gateway.Unavailable(op, fmt.Errorf("json.Unmarshal() > %w", err))
	}
	return record, nil
}

func (g *Gateway) get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	var raw json.RawMessage
	response, err := g.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&raw).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(%s) > %w", path, err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}
	return raw, nil
}

func (g *Gateway) put(ctx context.Context, path string, body any) error {
	response, err := g.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Put(path)
	if err != nil {
		return fmt.Errorf("httpClient.Put(%s) > %w", path, err)
	}
	if response.IsError() {
		return fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}
	return nil
}

func scoresPath(userID string, chapter int) string {
	return fmt.Sprintf("/users/%s/scores/%d", url.PathEscape(userID), chapter)
}

func sharedDeckPath(key string) string {
	return fmt.Sprintf("/%s/%s.json", sharedDecksPath, url.PathEscape(key))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeCollection accepts both shapes the database returns for a list:
// an array, possibly with null holes for missing integer keys, and an object keyed by push ID.
// Object entries come back in key order.
func decodeCollection[T any](raw json.RawMessage) ([]T, error) {
	items := []T{}
	if isNull(raw) {
		return items, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '[' {
		var list []*T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("json.Unmarshal() > %w", err)
		}
		for _, item := range list {
			if item != nil {
				items = append(items, *item)
			}
		}
		return items, nil
	}

	var byKey map[string]*T
	if err := json.Unmarshal(trimmed, &byKey); err != nil {
		return nil, fmt.Errorf("json.Unmarshal() > %w", err)
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if byKey[k] != nil {
			items = append(items, *byKey[k])
		}
	}
	return items, nil
}
