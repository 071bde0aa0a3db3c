package handler

import (
	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/service"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	pager
	courses *service.CourseService
}

func NewCourseHandler(courses *service.CourseService, cfg config.PaginationConfig) *CourseHandler {
	return &CourseHandler{pager: pager{cfg}, courses: courses}
}

// List 课程列表
func (h *CourseHandler) List(c *gin.Context) {
	var q service.CourseQuery
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	res, err := h.courses.Query(c.Request.Context(), q, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

// Create 创建课程，未指定作者时为当前用户
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseInput
	if !bindJSON(c, &req) {
		return
	}
	if req.AuthorID == "" {
		req.AuthorID = jwt.GetUserID(c)
	}
	if !authorize(c, authz.CourseCreate, req.AuthorID) {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "课程创建成功", course)
}

// Get 课程详情，登录用户附带点赞、收藏与观看进度
func (h *CourseHandler) Get(c *gin.Context) {
	detail, err := h.courses.Get(c.Request.Context(), c.Param("id"), jwt.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, detail)
}

// ownedBy 课程作者或管理员才能继续
func (h *CourseHandler) ownedBy(c *gin.Context, action authz.Action) bool {
	owner, err := h.courses.Owner(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return false
	}
	return authorize(c, action, owner)
}

func (h *CourseHandler) Update(c *gin.Context) {
	if !h.ownedBy(c, authz.CourseUpdate) {
		return
	}
	var req service.UpdateCourseInput
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "课程更新成功", course)
}

func (h *CourseHandler) Videos(c *gin.Context) {
	videos, err := h.courses.Videos(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, videos)
}

func (h *CourseHandler) AddVideo(c *gin.Context) {
	if !h.ownedBy(c, authz.CourseAddVideo) {
		return
	}
	var req service.CreateVideoInput
	if !bindJSON(c, &req) {
		return
	}
	video, err := h.courses.AddVideo(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "视频添加成功", video)
}

func (h *CourseHandler) Comments(c *gin.Context) {
	page, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.courses.Comments(c.Request.Context(), c.Param("id"), page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

// Comment 发表评论
func (h *CourseHandler) Comment(c *gin.Context) {
	var req service.CommentInput
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.courses.CreateComment(c.Request.Context(), c.Param("id"), jwt.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "评论成功", comment)
}

// Like 点赞/取消点赞
func (h *CourseHandler) Like(c *gin.Context) {
	liked, err := h.courses.ToggleLike(c.Request.Context(), c.Param("id"), jwt.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	message := "已取消点赞"
	if liked {
		message = "点赞成功"
	}
	response.SuccessWithMessage(c, message, gin.H{"isLiked": liked})
}

// Favorite 收藏/取消收藏
func (h *CourseHandler) Favorite(c *gin.Context) {
	favorited, err := h.courses.ToggleFavorite(c.Request.Context(), c.Param("id"), jwt.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	message := "已取消收藏"
	if favorited {
		message = "收藏成功"
	}
	response.SuccessWithMessage(c, message, gin.H{"isFavorited": favorited})
}

// Watch 上报观看进度
func (h *CourseHandler) Watch(c *gin.Context) {
	var req service.WatchInput
	if !bindJSON(c, &req) {
		return
	}
	reward, err := h.courses.RecordWatch(c.Request.Context(), c.Param("id"), jwt.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "观看进度已记录", gin.H{"points": reward.Points, "message": reward.Message})
}

func (h *CourseHandler) Related(c *gin.Context) {
	courses, err := h.courses.Related(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, courses)
}

// MyHistory 当前用户的观看历史
func (h *CourseHandler) MyHistory(c *gin.Context) {
	page, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.courses.WatchHistory(c.Request.Context(), jwt.GetUserID(c), page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

func (h *CourseHandler) Categories(c *gin.Context) {
	categories, err := h.courses.Categories(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类（管理员）
func (h *CourseHandler) CreateCategory(c *gin.Context) {
	if !authorize(c, authz.CategoryCreate, "") {
		return
	}
	var req service.CategoryInput
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.courses.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "分类创建成功", category)
}
