package surreal

import (
	"context"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

const tableUsers = "users"

type userRecord struct {
	ID        *models.RecordID      `json:"id,omitempty"`
	Email     string                `json:"email,omitempty"`
	Name      string                `json:"name"`
	Role      string                `json:"role"`
	IsActive  bool                  `json:"is_active"`
	IsBanned  bool                  `json:"is_banned"`
	BanReason string                `json:"ban_reason,omitempty"`
	Bio       string                `json:"bio,omitempty"`
	AvatarURL string                `json:"avatar_url,omitempty"`
	CreatedAt models.CustomDateTime `json:"created_at"`
	UpdatedAt models.CustomDateTime `json:"updated_at"`
}

func newUserRecord(u *domain.User) userRecord {
	rid := recordID(tableUsers, u.ID)
	return userRecord{
		ID:        &rid,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		IsBanned:  u.IsBanned,
		BanReason: u.BanReason,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: models.CustomDateTime{Time: u.CreatedAt},
		UpdatedAt: models.CustomDateTime{Time: u.UpdatedAt},
	}
}

func (rec userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:        recordIDString(rec.ID),
		Email:     rec.Email,
		Name:      rec.Name,
		Role:      domain.Role(rec.Role),
		IsActive:  rec.IsActive,
		IsBanned:  rec.IsBanned,
		BanReason: rec.BanReason,
		Bio:       rec.Bio,
		AvatarURL: rec.AvatarURL,
		CreatedAt: rec.CreatedAt.Time,
		UpdatedAt: rec.UpdatedAt.Time,
	}
}

// UserRepository is the SurrealDB implementation of
// ports.UserRepository. The record id is the identity provider's
// subject id, so duplicate creates fail on the id itself.
type UserRepository struct {
	store  *Store
	logger *zap.Logger
}

// NewUserRepository creates a SurrealDB-backed user repository.
func NewUserRepository(store *Store, logger *zap.Logger) *UserRepository {
	return &UserRepository{store: store, logger: logger}
}

// Create writes the user record, rejecting duplicate ids.
func (r *UserRepository) Create(ctx context.Context, draft domain.UserDraft) (*domain.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        draft.ID,
		Email:     draft.Email,
		Name:      draft.Name,
		Role:      draft.Role,
		IsActive:  true,
		Bio:       draft.Bio,
		AvatarURL: draft.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := surrealdb.Create[userRecord](ctx, db, tableUsers, newUserRecord(user)); err != nil {
		if isAlreadyExists(err) {
			return nil, apperrors.NewConflictError("user already exists").WithCause(err)
		}
		return nil, r.store.translate("Create", err)
	}

	r.logger.Debug("user created", zap.String("user_id", user.ID))
	return user, nil
}

// FindByID returns the user or (nil, nil) when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := surrealdb.Select[userRecord](ctx, db, recordID(tableUsers, id))
	if err != nil {
		return nil, r.store.translate("Select", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, nil
	}
	return rec.toDomain(), nil
}

// FindByEmail looks the user up by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	rows, err := queryRows[userRecord](ctx, r.store, "FindByEmail",
		"SELECT * FROM users WHERE email = $email LIMIT 1",
		map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

// List returns one page of users, newest first, plus the total count.
func (r *UserRepository) List(ctx context.Context, opts ports.ListOptions) (*ports.Page[domain.User], error) {
	opts.Normalize()

	total, err := queryCount(ctx, r.store, "List",
		"SELECT count() FROM users GROUP ALL", nil)
	if err != nil {
		return nil, err
	}

	rows, err := queryRows[userRecord](ctx, r.store, "List",
		"SELECT * FROM users ORDER BY created_at DESC LIMIT $limit START $start",
		map[string]any{"limit": opts.Limit, "start": opts.Offset})
	if err != nil {
		return nil, err
	}

	page := &ports.Page[domain.User]{Items: make([]*domain.User, 0, len(rows)), Total: total}
	for _, rec := range rows {
		page.Items = append(page.Items, rec.toDomain())
	}
	return page, nil
}

// Update reads, patches, and writes the record back.
func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user")
	}

	if err := patch.Apply(user); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now().UTC()

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := surrealdb.Update[userRecord](ctx, db, recordID(tableUsers, id), newUserRecord(user)); err != nil {
		return nil, r.store.translate("Update", err)
	}
	return user, nil
}

// Delete removes the record, failing when the id is unknown.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFoundError("user")
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := surrealdb.Delete[userRecord](ctx, db, recordID(tableUsers, id)); err != nil {
		return r.store.translate("Delete", err)
	}
	return nil
}
