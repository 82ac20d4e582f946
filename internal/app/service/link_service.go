package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/exploitz3r0/xq/internal/app/model"
	"github.com/exploitz3r0/xq/internal/app/repository"
	"github.com/exploitz3r0/xq/internal/infra/prometheus"
)

// generateAttempts bounds transparent retries when a freshly generated code
// collides with an existing one.
const generateAttempts = 3

// ErrEmptyURL rejects creation requests without a destination.
var ErrEmptyURL = errors.New("long url is required")

// LinkService defines behaviour-level operations on short links.
type LinkService interface {
	CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error)
	Resolve(ctx context.Context, code string, preview bool) (*model.Link, error)
	DeleteLink(ctx context.Context, code string) error
	RecentLinks(ctx context.Context, limit int) ([]model.Link, error)
	Sweep(ctx context.Context) (int64, error)
}

type linkService struct {
	repo      repository.LinkRepository
	generator *CodeGenerator
	filter    *CodeFilter
}

// NewLinkService returns a service implementation backed by the given
// repository. The filter is optional; when nil every lookup goes to the store.
func NewLinkService(repo repository.LinkRepository, generator *CodeGenerator, filter *CodeFilter) LinkService {
	if generator == nil {
		generator = NewCodeGenerator(DefaultCodeLength)
	}
	return &linkService{repo: repo, generator: generator, filter: filter}
}

// CreateLinkInput captures data required to create a short link.
type CreateLinkInput struct {
	LongURL    string
	CustomCode string
	ExpiresAt  *time.Time
}

func (s *linkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if input.LongURL == "" {
		return nil, fmt.Errorf("create link: %w", ErrEmptyURL)
	}

	if input.CustomCode != "" {
		link, err := s.insert(ctx, input, input.CustomCode)
		if err != nil {
			// A taken custom code is the caller's problem; no retry.
			return nil, fmt.Errorf("create link: %w", err)
		}
		return link, nil
	}

	var lastErr error
	for attempt := 0; attempt < generateAttempts; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			return nil, fmt.Errorf("create link: %w", err)
		}
		link, err := s.insert(ctx, input, code)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, repository.ErrCodeTaken) {
			return nil, fmt.Errorf("create link: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("create link: %w", lastErr)
}

func (s *linkService) insert(ctx context.Context, input CreateLinkInput, code string) (*model.Link, error) {
	link := &model.Link{
		LongURL:   input.LongURL,
		ShortCode: code,
		ExpiresAt: input.ExpiresAt,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		return nil, err
	}
	if s.filter != nil {
		s.filter.Add(link.ShortCode)
	}
	prometheus.LinksCreated.Inc()
	return link, nil
}

// Resolve sweeps expired links and then looks the code up. In preview mode
// the link is returned untouched; otherwise the click counter is bumped and
// the returned link carries the updated count.
func (s *linkService) Resolve(ctx context.Context, code string, preview bool) (*model.Link, error) {
	if _, err := s.Sweep(ctx); err != nil {
		return nil, fmt.Errorf("resolve link: %w", err)
	}

	if s.filter != nil && !s.filter.MayContain(code) {
		return nil, fmt.Errorf("resolve link: %w", repository.ErrLinkNotFound)
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolve link: %w", err)
	}

	if preview {
		prometheus.Previews.Inc()
		return link, nil
	}

	if err := s.repo.IncrementClicks(ctx, code); err != nil {
		return nil, fmt.Errorf("resolve link: %w", err)
	}
	link.Clicks++
	prometheus.Redirects.Inc()
	return link, nil
}

func (s *linkService) DeleteLink(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// RecentLinks sweeps first so expired rows never show up in the listing.
func (s *linkService) RecentLinks(ctx context.Context, limit int) ([]model.Link, error) {
	if _, err := s.Sweep(ctx); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	links, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// Sweep removes every link whose expiration has passed.
func (s *linkService) Sweep(ctx context.Context) (int64, error) {
	swept, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep links: %w", err)
	}
	if swept > 0 {
		prometheus.SweptLinks.Add(float64(swept))
	}
	return swept, nil
}
