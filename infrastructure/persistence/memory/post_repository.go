package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/google/uuid"
)

// PostRepository is an in-memory ports.PostRepository.
type PostRepository struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
}

// NewPostRepository creates an empty in-memory post repository.
func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]*domain.Post)}
}

func clonePost(p *domain.Post) *domain.Post {
	cp := *p
	if p.SubcategoryID != nil {
		sub := *p.SubcategoryID
		cp.SubcategoryID = &sub
	}
	if p.PublishedAt != nil {
		published := *p.PublishedAt
		cp.PublishedAt = &published
	}
	if p.Content != nil {
		cp.Content = append([]byte(nil), p.Content...)
	}
	return &cp
}

// Create stores a new post with a generated id.
func (r *PostRepository) Create(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	post := &domain.Post{
		ID:            uuid.New().String(),
		Title:         draft.Title,
		Slug:          draft.Slug,
		Content:       draft.Content,
		AuthorID:      draft.AuthorID,
		CategoryID:    draft.CategoryID,
		SubcategoryID: draft.SubcategoryID,
		Status:        draft.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if post.Status == domain.PostStatusPublished {
		post.PublishedAt = &now
	}
	r.posts[post.ID] = clonePost(post)
	return post, nil
}

// FindByID returns the post or (nil, nil) when absent.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(post), nil
}

// FindBySlug returns the post or (nil, nil) when absent.
func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, post := range r.posts {
		if post.Slug == slug {
			return clonePost(post), nil
		}
	}
	return nil, nil
}

// FindByAuthor returns the author's posts, newest first.
func (r *PostRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var posts []*domain.Post
	for _, post := range r.posts {
		if post.AuthorID == authorID {
			posts = append(posts, clonePost(post))
		}
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

// FindByStatus returns every post in the given status.
func (r *PostRepository) FindByStatus(ctx context.Context, status domain.PostStatus) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var posts []*domain.Post
	for _, post := range r.posts {
		if post.Status == status {
			posts = append(posts, clonePost(post))
		}
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

// List returns one filtered page of posts, newest first.
func (r *PostRepository) List(ctx context.Context, filter ports.PostListFilter, opts ports.ListOptions) (*ports.Page[domain.Post], error) {
	opts.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var posts []*domain.Post
	for _, post := range r.posts {
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && post.AuthorID != filter.AuthorID {
			continue
		}
		if filter.CategoryID != "" && post.CategoryID != filter.CategoryID {
			continue
		}
		posts = append(posts, clonePost(post))
	}
	sortPostsNewestFirst(posts)
	return pageOf(posts, opts), nil
}

// Update patches the stored post. The view counter is preserved, it
// belongs to IncrementViews.
func (r *PostRepository) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("post")
	}

	updated := clonePost(post)
	if err := patch.Apply(updated); err != nil {
		return nil, err
	}
	updated.Views = post.Views
	updated.UpdatedAt = time.Now().UTC()
	r.posts[id] = updated
	return clonePost(updated), nil
}

// IncrementViews bumps the stored view counter.
func (r *PostRepository) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return apperrors.NewNotFoundError("post")
	}
	post.Views++
	return nil
}

// Delete removes the post, failing when the id is unknown.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return apperrors.NewNotFoundError("post")
	}
	delete(r.posts, id)
	return nil
}

func sortPostsNewestFirst(posts []*domain.Post) {
	sort.Slice(posts, func(a, b int) bool {
		return posts[a].CreatedAt.After(posts[b].CreatedAt)
	})
}
