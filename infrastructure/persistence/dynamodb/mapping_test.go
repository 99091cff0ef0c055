package dynamodb

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedNow keeps mapping tests deterministic across backends; the
// surreal package uses the same instant.
var fixedNow = time.Date(2026, 3, 15, 12, 30, 45, 123456789, time.UTC)

func TestRelationItemRoundTrip(t *testing.T) {
	repo := &RelationRepository{kind: domain.RelationLike}

	rel := domain.NewRelation(domain.RelationDraft{
		UserID: "user-1",
		Target: domain.TargetRef{Kind: domain.TargetPost, ID: "post-1"},
	}, fixedNow)

	item := repo.newItem(rel)
	assert.Equal(t, "LIKE#user-1#POST#post-1", item.PK)
	assert.Equal(t, metadataSK, item.SK)
	assert.Equal(t, "USER#user-1", item.GSI1PK)
	assert.Equal(t, "TARGET#POST#post-1", item.GSI2PK)
	assert.Equal(t, "LIKE", item.EntityType)

	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)

	var back relationItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &back))
	assert.Equal(t, rel, back.toDomain())
}

func TestRelationItemCommentTarget(t *testing.T) {
	repo := &RelationRepository{kind: domain.RelationBookmark}

	rel := domain.NewRelation(domain.RelationDraft{
		UserID: "user-2",
		Target: domain.TargetRef{Kind: domain.TargetComment, ID: "comment-9"},
	}, fixedNow)

	item := repo.newItem(rel)
	assert.Equal(t, "TARGET#COMMENT#comment-9", item.GSI2PK)
	require.Nil(t, item.PostID)
	require.NotNil(t, item.CommentID)

	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)

	var back relationItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &back))
	got := back.toDomain()
	assert.Nil(t, got.PostID)
	assert.Equal(t, rel, got)
}

func TestPostItemRoundTrip(t *testing.T) {
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

	item := newPostItem(post)
	assert.Equal(t, "POST#post-1", item.PK)
	assert.Equal(t, "SLUG#hello", item.GSI1PK)
	assert.Equal(t, "AUTHOR#user-1", item.GSI2PK)

	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)

	var back postItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &back))
	assert.Equal(t, post, back.toDomain())
}

func TestPostItemDraftOmitsOptionals(t *testing.T) {
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

	av, err := attributevalue.MarshalMap(newPostItem(post))
	require.NoError(t, err)
	assert.NotContains(t, av, "SubcategoryID")
	assert.NotContains(t, av, "PublishedAt")

	var back postItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &back))
	got := back.toDomain()
	assert.Nil(t, got.SubcategoryID)
	assert.Nil(t, got.PublishedAt)
	assert.Equal(t, post, got)
}

func TestPageOf(t *testing.T) {
	items := []*domain.User{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}

	tests := []struct {
		name    string
		opts    ports.ListOptions
		wantIDs []string
	}{
		{name: "first page", opts: ports.ListOptions{Limit: 2, Offset: 0}, wantIDs: []string{"a", "b"}},
		{name: "middle page", opts: ports.ListOptions{Limit: 2, Offset: 2}, wantIDs: []string{"c", "d"}},
		{name: "short last page", opts: ports.ListOptions{Limit: 2, Offset: 4}, wantIDs: []string{"e"}},
		{name: "offset past end", opts: ports.ListOptions{Limit: 2, Offset: 10}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := pageOf(items, tt.opts)
			assert.Equal(t, 5, page.Total)
			ids := make([]string, 0, len(page.Items))
			for _, u := range page.Items {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestIsConditionalCheckFailed(t *testing.T) {
	var ccf error = &types.ConditionalCheckFailedException{}
	assert.True(t, isConditionalCheckFailed(ccf))
	assert.True(t, isConditionalCheckFailed(fmt.Errorf("put: %w", ccf)))
	assert.False(t, isConditionalCheckFailed(errors.New("throttled")))
	assert.False(t, isConditionalCheckFailed(nil))
}

func TestTranslateErrorTaxonomy(t *testing.T) {
	store := &Store{logger: zap.NewNop()}

	err := store.translate("PutItem", &types.ConditionalCheckFailedException{})
	assert.True(t, apperrors.IsConflict(err))

	err = store.translate("GetItem", &types.ResourceNotFoundException{})
	assert.True(t, apperrors.IsUnavailable(err))

	err = store.translate("Query", &types.ProvisionedThroughputExceededException{})
	assert.True(t, apperrors.IsUnavailable(err))

	// Transport failures are unavailability, not internal errors.
	err = store.translate("GetItem", errors.New("dial tcp: connection refused"))
	assert.True(t, apperrors.IsUnavailable(err))

	assert.NoError(t, store.translate("GetItem", nil))
}
