package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
	"github.com/SAP-F-2025/learning-portal-service/internal/validator"
)

type noteService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	markdown  goldmark.Markdown
	now       func() time.Time
	pickColor func() string
}

func NewNoteService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) NoteService {
	return &noteService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		// Raw HTML in note bodies is dropped by the default renderer.
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		now: time.Now,
		pickColor: func() string {
			return models.NoteColors[rand.Intn(len(models.NoteColors))]
		},
	}
}

func (s *noteService) List(ctx context.Context, ownerID string, filters repositories.NoteFilters) (*NoteListResponse, error) {
	filters.OwnerID = ownerID
	notes, total, err := s.repo.Note().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	categories, err := s.Categories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &NoteListResponse{Notes: nonNil(notes), Total: total, Categories: categories}, nil
}

func (s *noteService) Get(ctx context.Context, ownerID, id string) (*NoteResponse, error) {
	note, err := s.ownedNote(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(note.Content), &buf); err != nil {
		s.logger.Warn("Failed to render note", "note_id", id, "error", err)
		return &NoteResponse{Note: note}, nil
	}
	return &NoteResponse{Note: note, ContentHTML: buf.String()}, nil
}

func (s *noteService) Create(ctx context.Context, ownerID string, req *models.NoteRequest) (*models.Note, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	now := s.now().UTC()
	note := &models.Note{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Category:  strings.TrimSpace(req.Category),
		Color:     s.pickColor(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Note().Create(ctx, nil, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

func (s *noteService) Update(ctx context.Context, ownerID, id string, req *models.NoteRequest) (*models.Note, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, invalid(err)
	}

	note, err := s.ownedNote(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	note.Title = strings.TrimSpace(req.Title)
	note.Content = req.Content
	note.Category = strings.TrimSpace(req.Category)
	note.UpdatedAt = s.now().UTC()

	if err := s.repo.Note().Update(ctx, nil, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.ownedNote(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Note().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return notFound("note")
		}
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func (s *noteService) Categories(ctx context.Context, ownerID string) ([]string, error) {
	categories, err := s.repo.Note().Categories(ctx, nil, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return nonNil(categories), nil
}

// ownedNote treats another user's note as missing.
func (s *noteService) ownedNote(ctx context.Context, ownerID, id string) (*models.Note, error) {
	note, err := s.repo.Note().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFound("note")
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note.OwnerID != ownerID {
		return nil, notFound("note")
	}
	return note, nil
}
