package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"

	"github.com/daybook-app/daybook/internal/bookmarks/domain"
)

type Service struct {
	repo  domain.Repository
	genID *snowflake.Node
}

func New(repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &Service{repo: repo, genID: genID}
}

func (s *Service) List(ctx context.Context, uid string) ([]domain.Bookmark, error) {
	return s.repo.List(ctx, uid)
}

func (s *Service) Create(ctx context.Context, uid string, req domain.CreateBookmarkRequest) (*domain.Bookmark, error) {
	rawURL := strings.TrimSpace(req.URL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, domain.ErrInvalidURL
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = parsed.Host
	}

	bookmark := &domain.Bookmark{
		ID:    s.genID.Generate(),
		UID:   uid,
		Title: title,
		URL:   rawURL,
	}
	if err := s.repo.Create(ctx, bookmark); err != nil {
		return nil, err
	}
	return bookmark, nil
}

func (s *Service) Delete(ctx context.Context, uid string, id snowflake.ID) error {
	return s.repo.Delete(ctx, uid, id)
}
