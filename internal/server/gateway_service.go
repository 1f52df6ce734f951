// Package server exposes a gateway.Gateway over Connect RPC.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/at-ishikawa/pobcards/internal/gateway"
	"github.com/at-ishikawa/pobcards/internal/rpcapi"
)

// GatewayService serves the pobcards.v1.GatewayService procedures.
type GatewayService struct {
	backend  gateway.Gateway
	validate *validator.Validate
	logger   *slog.Logger
}

// NewGatewayService creates a GatewayService backed by backend.
func NewGatewayService(backend gateway.Gateway, logger *slog.Logger) *GatewayService {
	if logger == nil {
		logger = slog.Default()
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &GatewayService{backend: backend, validate: validate, logger: logger}
}

// Handler returns the mux pattern and handler for all procedures.
func (s *GatewayService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(rpcapi.JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(rpcapi.FetchChaptersProcedure, connect.NewUnaryHandler(rpcapi.FetchChaptersProcedure, s.FetchChapters, opts...))
	mux.Handle(rpcapi.FetchTermsProcedure, connect.NewUnaryHandler(rpcapi.FetchTermsProcedure, s.FetchTerms, opts...))
	mux.Handle(rpcapi.FetchScoreHistoryProcedure, connect.NewUnaryHandler(rpcapi.FetchScoreHistoryProcedure, s.FetchScoreHistory, opts...))
	mux.Handle(rpcapi.WriteScoreProcedure, connect.NewUnaryHandler(rpcapi.WriteScoreProcedure, s.WriteScore, opts...))
	mux.Handle(rpcapi.WriteSharedDeckProcedure, connect.NewUnaryHandler(rpcapi.WriteSharedDeckProcedure, s.WriteSharedDeck, opts...))
	mux.Handle(rpcapi.ReadSharedDeckProcedure, connect.NewUnaryHandler(rpcapi.ReadSharedDeckProcedure, s.ReadSharedDeck, opts...))
	return rpcapi.ServicePath, mux
}

func (s *GatewayService) FetchChapters(
	ctx context.Context,
	req *connect.Request[rpcapi.FetchChaptersRequest],
) (*connect.Response[rpcapi.FetchChaptersResponse], error) {
	chapters, err := s.backend.FetchChapters(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpcapi.FetchChaptersResponse{Chapters: chapters}), nil
}

func (s *GatewayService) FetchTerms(
	ctx context.Context,
	req *connect.Request[rpcapi.FetchTermsRequest],
) (*connect.Response[rpcapi.FetchTermsResponse], error) {
	if err := s.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	terms, err := s.backend.FetchTerms(ctx, req.Msg.Chapter)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpcapi.FetchTermsResponse{Terms: terms}), nil
}

func (s *GatewayService) FetchScoreHistory(
	ctx context.Context,
	req *connect.Request[rpcapi.FetchScoreHistoryRequest],
) (*connect.Response[rpcapi.FetchScoreHistoryResponse], error) {
	userID, err := requireUser(req.Header())
	if err != nil {
		return nil, err
	}
	if err := s.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	scores, err := s.backend.FetchScoreHistory(ctx, userID, req.Msg.Chapter, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpcapi.FetchScoreHistoryResponse{Scores: scores}), nil
}

func (s *GatewayService) WriteScore(
	ctx context.Context,
	req *connect.Request[rpcapi.WriteScoreRequest],
) (*connect.Response[rpcapi.WriteScoreResponse], error) {
	userID, err := requireUser(req.Header())
	if err != nil {
		return nil, err
	}
	if err := s.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if err := s.backend.WriteScore(ctx, userID, req.Msg.Chapter, req.Msg.Key, req.Msg.Record); err != nil {
		return nil, toConnectError(err)
	}
	s.logger.Info("score written", "user_id", userID, "chapter", req.Msg.Chapter, "key", req.Msg.Key)
	return connect.NewResponse(&rpcapi.WriteScoreResponse{}), nil
}

func (s *GatewayService) WriteSharedDeck(
	ctx context.Context,
	req *connect.Request[rpcapi.WriteSharedDeckRequest],
) (*connect.Response[rpcapi.WriteSharedDeckResponse], error) {
	if err := s.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if err := s.backend.WriteSharedDeck(ctx, req.Msg.Key, req.Msg.Record); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpcapi.WriteSharedDeckResponse{}), nil
}

func (s *GatewayService) ReadSharedDeck(
	ctx context.Context,
	req *connect.Request[rpcapi.ReadSharedDeckRequest],
) (*connect.Response[rpcapi.ReadSharedDeckResponse], error) {
	if err := s.validateRequest(req.Msg); err != nil {
		return nil, err
	}
	record, err := s.backend.ReadSharedDeck(ctx, req.Msg.Key)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpcapi.ReadSharedDeckResponse{Record: record}), nil
}

func requireUser(header http.Header) (string, error) {
	userID := strings.TrimSpace(header.Get(rpcapi.UserHeader))
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("missing %s header", rpcapi.UserHeader))
	}
	return userID, nil
}

func (s *GatewayService) validateRequest(msg any) *connect.Error {
	err := s.validate.Struct(msg)
	if err == nil {
		return nil
	}

	connectErr := connect.NewError(connect.CodeInvalidArgument, err)
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		var fieldViolations []*errdetails.BadRequest_FieldViolation
		for _, fe := range fieldErrors {
			fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       fe.Field(),
				Description: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
			FieldViolations: fieldViolations,
		}); detailErr == nil {
			connectErr.AddDetail(detail)
		}
	}
	return connectErr
}

func toConnectError(err error) error {
	if gateway.IsNotFound(err) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	if errors.Is(err, context.Canceled) {
		return connect.NewError(connect.CodeCanceled, err)
	}
	return connect.NewError(connect.CodeUnavailable, err)
}
