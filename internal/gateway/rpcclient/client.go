// Package rpcclient implements gateway.Gateway against a pobcards server over Connect RPC.
package rpcclient

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/pobcards/internal/gateway"
	"github.com/at-ishikawa/pobcards/internal/rpcapi"
)

// Gateway calls the pobcards.v1.GatewayService procedures.
type Gateway struct {
	fetchChapters     *connect.Client[rpcapi.FetchChaptersRequest, rpcapi.FetchChaptersResponse]
	fetchTerms        *connect.Client[rpcapi.FetchTermsRequest, rpcapi.FetchTermsResponse]
	fetchScoreHistory *connect.Client[rpcapi.FetchScoreHistoryRequest, rpcapi.FetchScoreHistoryResponse]
	writeScore        *connect.Client[rpcapi.WriteScoreRequest, rpcapi.WriteScoreResponse]
	writeSharedDeck   *connect.Client[rpcapi.WriteSharedDeckRequest, rpcapi.WriteSharedDeckResponse]
	readSharedDeck    *connect.Client[rpcapi.ReadSharedDeckRequest, rpcapi.ReadSharedDeckResponse]
}

var _ gateway.Gateway = (*Gateway)(nil)

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Gateway {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(rpcapi.JSONCodec{})}, opts...)
	return &Gateway{
		fetchChapters:     connect.NewClient[rpcapi.FetchChaptersRequest, rpcapi.FetchChaptersResponse](httpClient, baseURL+rpcapi.FetchChaptersProcedure, opts...),
		fetchTerms:        connect.NewClient[rpcapi.FetchTermsRequest, rpcapi.FetchTermsResponse](httpClient, baseURL+rpcapi.FetchTermsProcedure, opts...),
		fetchScoreHistory: connect.NewClient[rpcapi.FetchScoreHistoryRequest, rpcapi.FetchScoreHistoryResponse](httpClient, baseURL+rpcapi.FetchScoreHistoryProcedure, opts...),
		writeScore:        connect.NewClient[rpcapi.WriteScoreRequest, rpcapi.WriteScoreResponse](httpClient, baseURL+rpcapi.WriteScoreProcedure, opts...),
		writeSharedDeck:   connect.NewClient[rpcapi.WriteSharedDeckRequest, rpcapi.WriteSharedDeckResponse](httpClient, baseURL+rpcapi.WriteSharedDeckProcedure, opts...),
		readSharedDeck:    connect.NewClient[rpcapi.ReadSharedDeckRequest, rpcapi.ReadSharedDeckResponse](httpClient, baseURL+rpcapi.ReadSharedDeckProcedure, opts...),
	}
}

func (g *Gateway) FetchChapters(ctx context.Context) ([]gateway.Chapter, error) {
	res, err := g.fetchChapters.CallUnary(ctx, connect.NewRequest(&rpcapi.FetchChaptersRequest{}))
	if err != nil {
		return nil, toGatewayError("FetchChapters", err)
	}
	return res.Msg.Chapters, nil
}

func (g *Gateway) FetchTerms(ctx context.Context, chapter int) ([]gateway.Term, error) {
	res, err := g.fetchTerms.CallUnary(ctx, connect.NewRequest(&rpcapi.FetchTermsRequest{Chapter: chapter}))
	if err != nil {
		return nil, toGatewayError("FetchTerms", err)
	}
	return res.Msg.Terms, nil
}

func (g *Gateway) FetchScoreHistory(ctx context.Context, userID string, chapter, limit int) (map[string]gateway.RawScore, error) {
	req := connect.NewRequest(&rpcapi.FetchScoreHistoryRequest{Chapter: chapter, Limit: limit})
	req.Header().Set(rpcapi.UserHeader, userID)
	res, err := g.fetchScoreHistory.CallUnary(ctx, req)
	if err != nil {
		return nil, toGatewayError("FetchScoreHistory", err)
	}
	if res.Msg.Scores == nil {
		return map[string]gateway.RawScore{}, nil
	}
	return res.Msg.Scores, nil
}

func (g *Gateway) WriteScore(ctx context.Context, userID string, chapter int, key string, record gateway.ScoreRecord) error {
	req := connect.NewRequest(&rpcapi.WriteScoreRequest{Chapter: chapter, Key: key, Record: record})
	req.Header().Set(rpcapi.UserHeader, userID)
	if _, err := g.writeScore.CallUnary(ctx, req); err != nil {
		return toGatewayError("WriteScore", err)
	}
	return nil
}

func (g *Gateway) WriteSharedDeck(ctx context.Context, key string, record gateway.ShareRecord) error {
	if _, err := g.writeSharedDeck.CallUnary(ctx, connect.NewRequest(&rpcapi.WriteSharedDeckRequest{Key: key, Record: record})); err != nil {
		return toGatewayError("WriteSharedDeck", err)
	}
	return nil
}

func (g *Gateway) ReadSharedDeck(ctx context.Context, key string) (gateway.ShareRecord, error) {
	res, err := g.readSharedDeck.CallUnary(ctx, connect.NewRequest(&rpcapi.ReadSharedDeckRequest{Key: key}))
	if err != nil {
		// A malformed code can never name a stored share.
		if connect.CodeOf(err) == connect.CodeInvalidArgument {
			return gateway.ShareRecord{}, gateway.NotFound("ReadSharedDeck("+key+")", err)
		}
		return gateway.ShareRecord{}, toGatewayError("ReadSharedDeck("+key+")", err)
	}
	return res.Msg.Record, nil
}

func toGatewayError(op string, err error) error {
	if connect.CodeOf(err) == connect.CodeNotFound {
		return gateway.NotFound(op, err)
	}
	return gateway.Unavailable(op, err)
}
