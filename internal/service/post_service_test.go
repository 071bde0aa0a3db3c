package service

import (
	"context"
	"testing"
	"time"

	"cme-platform/internal/model"
	"cme-platform/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostPublishedAt(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := s.createUser(t, "writer@example.com")

	draft, err := s.posts.Create(ctx, CreatePostInput{AuthorID: author.ID, Title: "草稿", Content: "..."})
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusDraft, draft.Status)
	assert.Nil(t, draft.PublishedAt)
	assert.NotNil(t, draft.Tags)
	assert.Empty(t, draft.Tags)

	published, err := s.posts.Create(ctx, CreatePostInput{
		AuthorID: author.ID,
		Title:    "病例分享",
		Content:  "...",
		Tags:     []string{"心内科", " 病例 ", ""},
		Status:   model.PostStatusPublished,
	})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, []string{"心内科", "病例"}, []string(published.Tags))
	require.NotNil(t, published.Author)
	assert.Equal(t, author.Nickname, published.Author.Nickname)

	_, err = s.posts.Create(ctx, CreatePostInput{AuthorID: "missing", Title: "x", Content: "x"})
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))
}

func TestUpdatePostSetsPublishedAtOnce(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := s.createUser(t, "editor@example.com")

	post, err := s.posts.Create(ctx, CreatePostInput{AuthorID: author.ID, Title: "初稿", Content: "..."})
	require.NoError(t, err)

	first := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.Local)
	s.posts.now = func() time.Time { return first }
	status := model.PostStatusPublished
	post, err = s.posts.Update(ctx, post.ID, UpdatePostInput{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.WithinDuration(t, first, *post.PublishedAt, time.Second)

	s.posts.now = func() time.Time { return first.Add(48 * time.Hour) }
	archived := model.PostStatusArchived
	_, err = s.posts.Update(ctx, post.ID, UpdatePostInput{Status: &archived})
	require.NoError(t, err)
	tags := []string{"更新"}
	post, err = s.posts.Update(ctx, post.ID, UpdatePostInput{Status: &status, Tags: &tags})
	require.NoError(t, err)
	assert.WithinDuration(t, first, *post.PublishedAt, time.Second)
	assert.Equal(t, []string{"更新"}, []string(post.Tags))
}

func TestDeletedPostsHiddenFromDefaultQuery(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := s.createUser(t, "cleaner@example.com")

	keep, err := s.posts.Create(ctx, CreatePostInput{AuthorID: author.ID, Title: "保留", Content: "...", Status: model.PostStatusPublished})
	require.NoError(t, err)
	gone, err := s.posts.Create(ctx, CreatePostInput{AuthorID: author.ID, Title: "删除", Content: "...", Status: model.PostStatusPublished})
	require.NoError(t, err)

	require.NoError(t, s.posts.Delete(ctx, gone.ID))

	res, err := s.posts.Query(ctx, PostQuery{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	assert.Equal(t, keep.ID, res.Items[0].ID)

	res, err = s.posts.Query(ctx, PostQuery{Status: model.PostStatusDeleted}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	require.NoError(t, s.posts.Purge(ctx, gone.ID))
	_, err = s.posts.Get(ctx, gone.ID)
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))
}

func TestGetPostCountsViews(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := s.createUser(t, "reader@example.com")
	post, err := s.posts.Create(ctx, CreatePostInput{AuthorID: author.ID, Title: "热帖", Content: "...", Tags: []string{"a"}})
	require.NoError(t, err)

	got, err := s.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
	got, err = s.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)
	assert.Equal(t, []string{"a"}, []string(got.Tags))

	owner, err := s.posts.Owner(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, owner)
}

func TestQueryPostsKeywordIsLiteral(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := s.createUser(t, "promo@example.com")

	for _, title := range []string{"hello", "discount 50% off", "a!b"} {
		_, err := s.posts.Create(ctx, CreatePostInput{AuthorID: author.ID, Title: title, Content: title})
		require.NoError(t, err)
	}

	cases := []struct {
		keyword string
		total   int64
	}{
		{"_", 0},
		{"%", 1},
		{"50%", 1},
		{"0% o", 1},
		{"!", 1},
		{"ell", 1},
	}
	for _, tc := range cases {
		t.Run(tc.keyword, func(t *testing.T) {
			result, err := s.posts.Query(ctx, PostQuery{Keyword: tc.keyword}, 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tc.total, result.Total)
		})
	}
}
