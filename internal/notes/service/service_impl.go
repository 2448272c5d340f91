package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"

	"github.com/daybook-app/daybook/internal/notes/domain"
)

type Service struct {
	repo  domain.Repository
	genID *snowflake.Node
}

func New(repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &Service{repo: repo, genID: genID}
}

func (s *Service) List(ctx context.Context, uid string) ([]domain.Note, error) {
	return s.repo.List(ctx, uid)
}

func (s *Service) Create(ctx context.Context, uid string, req domain.CreateNoteRequest) (*domain.Note, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	note := &domain.Note{
		ID:    s.genID.Generate(),
		UID:   uid,
		Title: title,
		Body:  req.Body,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) Update(ctx context.Context, uid string, id snowflake.ID, req domain.UpdateNoteRequest) (*domain.Note, error) {
	note, err := s.repo.FindByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrTitleRequired
		}
		note.Title = title
	}
	if req.Body != nil {
		note.Body = *req.Body
	}

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) Delete(ctx context.Context, uid string, id snowflake.ID) error {
	return s.repo.Delete(ctx, uid, id)
}
