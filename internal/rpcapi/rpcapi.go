// Package rpcapi defines the pobcards.v1.GatewayService wire contract shared by the
// Connect server and client. Messages are plain Go structs carried as JSON.
package rpcapi

import (
	"encoding/json"

	"github.com/at-ishikawa/pobcards/internal/gateway"
)

const (
	ServiceName = "pobcards.v1.GatewayService"
	// ServicePath is the mux pattern for every procedure of the service.
	ServicePath = "/" + ServiceName + "/"

	FetchChaptersProcedure     = ServicePath + "FetchChapters"
	FetchTermsProcedure        = ServicePath + "FetchTerms"
	FetchScoreHistoryProcedure = ServicePath + "FetchScoreHistory"
	WriteScoreProcedure        = ServicePath + "WriteScore"
	WriteSharedDeckProcedure   = ServicePath + "WriteSharedDeck"
	ReadSharedDeckProcedure    = ServicePath + "ReadSharedDeck"

	// UserHeader carries the authenticated user id set by the identity proxy.
	UserHeader = "X-User-Id"
)

// JSONCodec marshals messages with encoding/json under the "json" codec name.
type JSONCodec struct{}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type FetchChaptersRequest struct{}

type FetchChaptersResponse struct {
	Chapters []gateway.Chapter `json:"chapters"`
}

type FetchTermsRequest struct {
	Chapter int `json:"chapter" validate:"gte=0"`
}

type FetchTermsResponse struct {
	Terms []gateway.Term `json:"terms"`
}

type FetchScoreHistoryRequest struct {
	Chapter int `json:"chapter" validate:"gte=0"`
	Limit   int `json:"limit" validate:"gte=1,lte=100"`
}

type FetchScoreHistoryResponse struct {
	Scores map[string]gateway.RawScore `json:"scores"`
}

type WriteScoreRequest struct {
	Chapter int                 `json:"chapter" validate:"gte=0"`
	Key     string              `json:"key" validate:"required,numeric,max=32"`
	Record  gateway.ScoreRecord `json:"record"`
}

type WriteScoreResponse struct{}

type WriteSharedDeckRequest struct {
	Key    string              `json:"key" validate:"required,alphanum,min=12,max=64"`
	Record gateway.ShareRecord `json:"record"`
}

type WriteSharedDeckResponse struct{}

type ReadSharedDeckRequest struct {
	Key string `json:"key" validate:"required,alphanum,max=64"`
}

type ReadSharedDeckResponse struct {
	Record gateway.ShareRecord `json:"record"`
}
