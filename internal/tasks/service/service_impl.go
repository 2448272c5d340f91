package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"

	"github.com/daybook-app/daybook/internal/tasks/domain"
)

type Service struct {
	repo  domain.Repository
	genID *snowflake.Node
}

func New(repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &Service{repo: repo, genID: genID}
}

func (s *Service) List(ctx context.Context, uid string) ([]domain.Task, error) {
	return s.repo.List(ctx, uid)
}

func (s *Service) Create(ctx context.Context, uid string, req domain.CreateTaskRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	task := &domain.Task{
		ID:       s.genID.Generate(),
		UID:      uid,
		Title:    title,
		ParentID: req.ParentID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Update(ctx context.Context, uid string, id snowflake.ID, req domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrTitleRequired
		}
		task.Title = title
	}
	if req.Done != nil {
		task.Done = *req.Done
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, uid string, id snowflake.ID) error {
	return s.repo.Delete(ctx, uid, id)
}
