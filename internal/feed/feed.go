// Package feed stores a user's social posts as one document.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/kv"
	"github.com/google/uuid"
)

// Media attachment kinds.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// maxAttachments bounds the media of one post.
const maxAttachments = 4

var (
	ErrPostNotFound = errors.NewSentinel("post not found")
	ErrInvalidPost  = errors.NewSentinel("invalid post")
)

type Media struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Media     []Media   `json:"media"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// validateMedia enforces the attachment rules: at most four attachments,
// and either images only or exactly one video.
func validateMedia(media []Media) error {
	if len(media) > maxAttachments {
		return errors.Wrap(ErrInvalidPost, "too many attachments", slog.Int("count", len(media)))
	}
	var videos int
	for _, m := range media {
		switch m.Type {
		case MediaImage:
		case MediaVideo:
			videos++
		default:
			return errors.Wrap(ErrInvalidPost, "unknown media type", slog.String("type", m.Type))
		}
		if m.URL == "" {
			return errors.Wrap(ErrInvalidPost, "attachment without url")
		}
	}
	if videos > 1 || (videos == 1 && len(media) > 1) {
		return errors.Wrap(ErrInvalidPost, "video posts carry exactly one attachment")
	}
	return nil
}

// Service keeps each user's posts under one document, newest first.
type Service struct {
	documents kv.Store
	clock     func() time.Time
	logger    *slog.Logger
}

func NewService(documents kv.Store, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{documents: documents, clock: clock, logger: logger}
}

// List returns the user's posts, newest first.
func (s *Service) List(ctx context.Context, userEmail string) ([]Post, error) {
	return s.load(ctx, userEmail)
}

// Create validates and prepends a new post.
func (s *Service) Create(ctx context.Context, userEmail, content string, media []Media) (Post, error) {
	if content == "" && len(media) == 0 {
		return Post{}, errors.Wrap(ErrInvalidPost, "empty post")
	}
	if err := validateMedia(media); err != nil {
		return Post{}, err
	}
	posts, err := s.load(ctx, userEmail)
	if err != nil {
		return Post{}, err
	}
	now := s.clock()
	post := Post{
		ID:        uuid.NewString(),
		Content:   content,
		Media:     media,
		CreatedAt: now,
		UpdatedAt: now,
	}
	posts = slices.Insert(posts, 0, post)
	if err := s.store(ctx, userEmail, posts); err != nil {
		return Post{}, err
	}
	return post, nil
}

// Update replaces the content and media of an existing post.
func (s *Service) Update(ctx context.Context, userEmail, id, content string, media []Media) (Post, error) {
	if err := validateMedia(media); err != nil {
		return Post{}, err
	}
	posts, err := s.load(ctx, userEmail)
	if err != nil {
		return Post{}, err
	}
	index := slices.IndexFunc(posts, func(p Post) bool { return p.ID == id })
	if index < 0 {
		return Post{}, ErrPostNotFound
	}
	posts[index].Content = content
	posts[index].Media = media
	posts[index].UpdatedAt = s.clock()
	if err := s.store(ctx, userEmail, posts); err != nil {
		return Post{}, err
	}
	return posts[index], nil
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, userEmail, id string) error {
	posts, err := s.load(ctx, userEmail)
	if err != nil {
		return err
	}
	index := slices.IndexFunc(posts, func(p Post) bool { return p.ID == id })
	if index < 0 {
		return ErrPostNotFound
	}
	posts = slices.Delete(posts, index, index+1)
	return s.store(ctx, userEmail, posts)
}

func (s *Service) load(ctx context.Context, userEmail string) ([]Post, error) {
	raw, err := s.documents.Get(ctx, userEmail, kv.KeyUserPosts)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load posts")
	}
	var posts []Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		// A malformed feed document loses the feed, not the account.
		s.logger.LogAttrs(ctx, slog.LevelWarn, "discarding malformed feed document",
			errors.SlogError(err))
		return nil, nil
	}
	return posts, nil
}

func (s *Service) store(ctx context.Context, userEmail string, posts []Post) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return errors.Wrap(err, "encode posts")
	}
	if err := s.documents.Set(ctx, userEmail, kv.KeyUserPosts, raw); err != nil {
		return errors.Wrap(err, "store posts")
	}
	return nil
}
