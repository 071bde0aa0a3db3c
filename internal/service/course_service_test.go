package service

import (
	"context"
	"testing"
	"time"

	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedCourse 创建分类与已发布课程
func seedCourse(t *testing.T, s *services, authorID string) *model.Course {
	t.Helper()
	ctx := context.Background()
	category, err := s.courses.CreateCategory(ctx, CategoryInput{Name: "心内科"})
	require.NoError(t, err)

	price := 9.9
	course, err := s.courses.Create(ctx, CreateCourseInput{
		Title:      "心电图入门",
		CategoryID: category.ID,
		AuthorID:   authorID,
		Price:      &price,
	})
	require.NoError(t, err)

	published := model.CourseStatusPublished
	course, err = s.courses.Update(ctx, course.ID, UpdateCourseInput{Status: &published})
	require.NoError(t, err)
	return course
}

func TestCreateCourseChecksReferences(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := s.createUser(t, "author@example.com")

	_, err := s.courses.Create(ctx, CreateCourseInput{Title: "x", CategoryID: "missing", AuthorID: author.ID})
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))

	category, err := s.courses.CreateCategory(ctx, CategoryInput{Name: "外科"})
	require.NoError(t, err)
	_, err = s.courses.Create(ctx, CreateCourseInput{Title: "x", CategoryID: category.ID, AuthorID: "missing"})
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))

	course, err := s.courses.Create(ctx, CreateCourseInput{Title: "草稿课程", CategoryID: category.ID, AuthorID: author.ID})
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusDraft, course.Status)
	require.NotNil(t, course.Category)
	assert.Equal(t, "外科", course.Category.Name)

	// 默认只列出已发布课程
	res, err := s.courses.Query(ctx, CourseQuery{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Total)

	res, err = s.courses.Query(ctx, CourseQuery{Status: model.CourseStatusDraft}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
}

func TestQueryCoursesByDepartment(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := s.createUser(t, "dept@example.com")

	parent, err := s.courses.CreateCategory(ctx, CategoryInput{Name: "内科"})
	require.NoError(t, err)
	child, err := s.courses.CreateCategory(ctx, CategoryInput{Name: "消化", ParentID: &parent.ID})
	require.NoError(t, err)

	course, err := s.courses.Create(ctx, CreateCourseInput{Title: "胃镜", CategoryID: child.ID, AuthorID: author.ID})
	require.NoError(t, err)
	published := model.CourseStatusPublished
	_, err = s.courses.Update(ctx, course.ID, UpdateCourseInput{Status: &published})
	require.NoError(t, err)

	res, err := s.courses.Query(ctx, CourseQuery{Department: "内科"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	res, err = s.courses.Query(ctx, CourseQuery{Department: "外科"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Total)

	tree, err := s.courses.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "消化", tree[0].Children[0].Name)
}

func TestToggleLikeAndFavorite(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := s.createUser(t, "fan@example.com")
	course := seedCourse(t, s, user.ID)

	liked, err := s.courses.ToggleLike(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	detail, err := s.courses.Get(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsLiked)
	assert.Equal(t, 1, detail.LikeCount)

	liked, err = s.courses.ToggleLike(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	favorited, err := s.courses.ToggleFavorite(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	detail, err = s.courses.Get(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, detail.IsLiked)
	assert.Zero(t, detail.LikeCount)
	assert.True(t, detail.IsFavorited)
	assert.Equal(t, 1, detail.FavoriteCount)

	anonymous, err := s.courses.Get(ctx, course.ID, "")
	require.NoError(t, err)
	assert.False(t, anonymous.IsFavorited)

	_, err = s.courses.ToggleLike(ctx, "missing", user.ID)
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))
}

func TestDuplicateLikeInsertIsIgnored(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := s.createUser(t, "double@example.com")
	course := seedCourse(t, s, user.ID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewCourseRepository(tx)
		created, err := repo.CreateLike(ctx, course.ID, user.ID)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.CreateLike(ctx, course.ID, user.ID)
		require.NoError(t, err)
		assert.False(t, created)

		created, err = repo.CreateFavorite(ctx, course.ID, user.ID)
		require.NoError(t, err)
		assert.True(t, created)

		return repo.IncrementCounter(ctx, course.ID, "like_count", 1)
	})
	require.NoError(t, err)

	detail, err := s.courses.Get(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsLiked)
	assert.True(t, detail.IsFavorited)
	assert.Equal(t, 1, detail.LikeCount)
}

func TestCommentTree(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := s.createUser(t, "talker@example.com")
	course := seedCourse(t, s, user.ID)
	other := seedCourse(t, s, user.ID)

	root, err := s.courses.CreateComment(ctx, course.ID, user.ID, CommentInput{Content: "讲得好"})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	reply, err := s.courses.CreateComment(ctx, course.ID, user.ID, CommentInput{Content: "同意", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	// 回复的回复挂到顶级评论
	nested, err := s.courses.CreateComment(ctx, course.ID, user.ID, CommentInput{Content: "+1", ParentID: &reply.ID})
	require.NoError(t, err)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, root.ID, *nested.ParentID)

	_, err = s.courses.CreateComment(ctx, other.ID, user.ID, CommentInput{Content: "串门", ParentID: &root.ID})
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))

	res, err := s.courses.Comments(ctx, course.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Len(t, res.Items[0].Replies, 2)
	require.NotNil(t, res.Items[0].User)

	detail, err := s.courses.Get(ctx, course.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, detail.CommentCount)
}

func TestRecordWatchAwardsPoints(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := s.createUser(t, "learner@example.com")
	course := seedCourse(t, s, user.ID)

	video, err := s.courses.AddVideo(ctx, course.ID, CreateVideoInput{Title: "第一讲", VideoURL: "https://cdn.example.com/1.mp4", Duration: 600})
	require.NoError(t, err)

	reward, err := s.courses.RecordWatch(ctx, course.ID, user.ID, WatchInput{VideoID: &video.ID, WatchTime: 120, Progress: 0.2})
	require.NoError(t, err)
	assert.Zero(t, reward.Points)

	reward, err = s.courses.RecordWatch(ctx, course.ID, user.ID, WatchInput{VideoID: &video.ID, WatchTime: 360, Progress: 0.6})
	require.NoError(t, err)
	assert.Equal(t, 20, reward.Points)

	detail, err := s.courses.Get(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, detail.WatchProgress, 1e-9)
	assert.Equal(t, 2, detail.ViewCount)

	history, err := s.courses.WatchHistory(ctx, user.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, 360, history.Items[0].WatchTime)
	require.NotNil(t, history.Items[0].Course)
	assert.Equal(t, course.Title, history.Items[0].Course.Title)

	videos, err := s.courses.Videos(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, videos, 1)
}

func TestRelatedCoursesExcludeSelf(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := s.createUser(t, "rel@example.com")
	course := seedCourse(t, s, author.ID)

	sibling, err := s.courses.Create(ctx, CreateCourseInput{Title: "进阶", CategoryID: course.CategoryID, AuthorID: author.ID})
	require.NoError(t, err)
	published := model.CourseStatusPublished
	_, err = s.courses.Update(ctx, sibling.ID, UpdateCourseInput{Status: &published})
	require.NoError(t, err)

	related, err := s.courses.Related(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, sibling.ID, related[0].ID)
}

func TestCategoriesCachedInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	s := newServices(t)
	s.courses.catCache = redis.NewJSONCache(client, redis.CategoryTreeKey, time.Minute)
	ctx := context.Background()

	_, err := s.courses.CreateCategory(ctx, CategoryInput{Name: "儿科"})
	require.NoError(t, err)

	tree, err := s.courses.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, tree, 1)
	assert.True(t, mr.Exists(redis.CategoryTreeKey))

	// 新建分类后缓存失效
	_, err = s.courses.CreateCategory(ctx, CategoryInput{Name: "妇产科", SortOrder: 1})
	require.NoError(t, err)
	assert.False(t, mr.Exists(redis.CategoryTreeKey))

	tree, err = s.courses.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, tree, 2)
}
