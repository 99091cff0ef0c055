package surreal

import (
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

// fixedNow matches the instant used by the dynamodb mapping tests, so
// both driver families are checked against the same domain fixtures.
var fixedNow = time.Date(2026, 3, 15, 12, 30, 45, 123456789, time.UTC)

func TestRelationRecordRoundTrip(t *testing.T) {
	repo := &RelationRepository{kind: domain.RelationLike, table: "likes"}

	rel := domain.NewRelation(domain.RelationDraft{
		UserID: "user-1",
		Target: domain.TargetRef{Kind: domain.TargetPost, ID: "post-1"},
	}, fixedNow)

	rec := repo.newRecord(rel)
	require.NotNil(t, rec.ID)
	assert.Equal(t, "likes", rec.ID.Table)
	assert.Equal(t, "user-1#POST#post-1", rec.ID.ID)
	assert.Equal(t, "POST", rec.TargetKind)
	assert.Equal(t, "post-1", rec.TargetID)

	assert.Equal(t, rel, rec.toDomain())
}

func TestRelationRecordCommentTarget(t *testing.T) {
	repo := &RelationRepository{kind: domain.RelationBookmark, table: "bookmarks"}

	rel := domain.NewRelation(domain.RelationDraft{
		UserID: "user-2",
		Target: domain.TargetRef{Kind: domain.TargetComment, ID: "comment-9"},
	}, fixedNow)

	rec := repo.newRecord(rel)
	assert.Equal(t, "COMMENT", rec.TargetKind)
	require.Nil(t, rec.PostID)
	require.NotNil(t, rec.CommentID)

	got := rec.toDomain()
	assert.Nil(t, got.PostID)
	assert.Equal(t, rel, got)
}

func TestPostRecordRoundTrip(t *testing.T) {
	published := fixedNow.Add(-24 * time.Hour)
	sub := "subcat-1"
	post := &domain.Post{
		ID:            "post-1",
		Title:         "Hello",
		Slug:          "hello",
		Content:       json.RawMessage(`{"blocks":[{"type":"text","value":"hi"}]}`),
		AuthorID:      "user-1",
		CategoryID:    "cat-1",
		SubcategoryID: &sub,
		Status:        domain.PostStatusPublished,
		PublishedAt:   &published,
		Views:         42,
		CreatedAt:     fixedNow.Add(-48 * time.Hour),
		UpdatedAt:     fixedNow,
	}

	rec := newPostRecord(post)
	require.NotNil(t, rec.ID)
	assert.Equal(t, tablePosts, rec.ID.Table)
	assert.Equal(t, "post-1", rec.ID.ID)

	assert.Equal(t, post, rec.toDomain())
}

func TestPostRecordDraftOmitsOptionals(t *testing.T) {
	post := &domain.Post{
		ID:         "post-2",
		Title:      "Draft",
		Slug:       "draft",
		Content:    json.RawMessage(`{}`),
		AuthorID:   "user-1",
		CategoryID: "cat-1",
		Status:     domain.PostStatusDraft,
		CreatedAt:  fixedNow,
		UpdatedAt:  fixedNow,
	}

	rec := newPostRecord(post)
	assert.Nil(t, rec.SubcategoryID)
	assert.Nil(t, rec.PublishedAt)

	got := rec.toDomain()
	assert.Nil(t, got.SubcategoryID)
	assert.Nil(t, got.PublishedAt)
	assert.Equal(t, post, got)
}

func TestRecordIDString(t *testing.T) {
	assert.Equal(t, "", recordIDString(nil))

	rid := models.NewRecordID("posts", "post-1")
	assert.Equal(t, "post-1", recordIDString(&rid))

	// Ids written by other tools may come back as non-string values.
	numeric := models.NewRecordID("posts", 42)
	assert.Equal(t, "42", recordIDString(&numeric))
}

func TestOptTimeRoundTrip(t *testing.T) {
	assert.Nil(t, optTime(nil))
	assert.Nil(t, optTimeBack(nil))

	local := fixedNow.In(time.FixedZone("BRT", -3*3600))
	wire := optTime(&local)
	require.NotNil(t, wire)
	back := optTimeBack(wire)
	require.NotNil(t, back)
	assert.True(t, back.Equal(fixedNow))
	assert.Equal(t, time.UTC, back.Location())
}

func TestIsAlreadyExists(t *testing.T) {
	assert.True(t, isAlreadyExists(errors.New("Database record `likes:u1` already exists")))
	assert.False(t, isAlreadyExists(errors.New("query timeout")))
	assert.False(t, isAlreadyExists(nil))
}

func TestTranslateErrorTaxonomy(t *testing.T) {
	store := &Store{logger: zap.NewNop()}

	err := store.translate("Select", &net.DNSError{Err: "no such host", IsTimeout: true})
	assert.True(t, apperrors.IsUnavailable(err))

	err = store.translate("Select", net.ErrClosed)
	assert.True(t, apperrors.IsUnavailable(err))

	// A server-side rejection is an internal error, never unavailability.
	err = store.translate("Create", errors.New("There was a problem with the database"))
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)

	assert.NoError(t, store.translate("Select", nil))
}
