// Package grpcserver exposes the catalog read paths over gRPC.
package grpcserver

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"streamhub/internal/auth"
	"streamhub/internal/catalog"
	"streamhub/internal/shelves"
	"streamhub/internal/titles"
	"streamhub/pkg/models"
)

type TitleLister interface {
	List(ctx context.Context, q titles.ListQuery) ([]models.Title, error)
}

type WatchedSource interface {
	WatchedIDs(ctx context.Context, profileID string) ([]string, error)
}

type Server struct {
	Titles  TitleLister
	Watched WatchedSource
	Shelves *shelves.Service
}

func NewServer(titleRepo TitleLister, watched WatchedSource, svc *shelves.Service) *Server {
	return &Server{Titles: titleRepo, Watched: watched, Shelves: svc}
}

func (s *Server) ListTitles(ctx context.Context, req *ListTitlesRequest) (*ListTitlesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	watched, ok := catalog.ParseWatchedState(req.Watched)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "watched must be all, yes or no")
	}
	limit := req.Limit
	if limit <= 0 || limit > titles.MaxListLimit {
		limit = titles.MaxListLimit
	}
	q := titles.ListQuery{
		Q:       strings.TrimSpace(req.Query),
		Genre:   strings.TrimSpace(req.Genre),
		Watched: watched,
		Limit:   limit,
	}

	var watchedSet catalog.IDSet
	if watched != catalog.WatchedAll {
		profileID := strings.TrimSpace(req.ProfileID)
		if profileID == "" {
			return nil, status.Error(codes.FailedPrecondition, auth.ErrNoProfile.Error())
		}
		ids, err := s.Watched.WatchedIDs(ctx, profileID)
		if err != nil {
			return nil, status.Error(codes.Internal, "watch history failed")
		}
		q.WatchedIDs = ids
		watchedSet = catalog.NewIDSet(ids...)
	}

	items, err := s.Titles.List(ctx, q)
	if err != nil {
		return nil, status.Error(codes.Internal, "list failed")
	}

	var out []catalog.DisplayEntity
	if req.Raw {
		out = make([]catalog.DisplayEntity, 0, len(items))
		for _, t := range items {
			out = append(out, catalog.DisplayEntity{Title: t})
		}
	} else {
		out = catalog.Filter(catalog.Group(items), catalog.FilterOptions{Query: q.Q, Genre: q.Genre, Watched: watched}, watchedSet)
	}
	return &ListTitlesResponse{Titles: out}, nil
}

func (s *Server) GetShelves(ctx context.Context, req *GetShelvesRequest) (*GetShelvesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	home, err := s.Shelves.Home(ctx, strings.TrimSpace(req.ProfileID))
	if errors.Is(err, auth.ErrNoProfile) {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, "shelves failed")
	}
	return &GetShelvesResponse{Shelves: home}, nil
}
