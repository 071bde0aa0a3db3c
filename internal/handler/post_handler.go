package handler

import (
	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/service"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	pager
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService, cfg config.PaginationConfig) *PostHandler {
	return &PostHandler{pager: pager{cfg}, posts: posts}
}

func (h *PostHandler) List(c *gin.Context) {
	var q service.PostQuery
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	res, err := h.posts.Query(c.Request.Context(), q, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

// Create 发帖，只能以自己的身份发布
func (h *PostHandler) Create(c *gin.Context) {
	var req service.CreatePostInput
	if !bindJSON(c, &req) {
		return
	}
	if !authorize(c, authz.PostCreate, req.AuthorID) {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "帖子创建成功", post)
}

func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, post)
}

func (h *PostHandler) ownedBy(c *gin.Context, action authz.Action) bool {
	owner, err := h.posts.Owner(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return false
	}
	return authorize(c, action, owner)
}

func (h *PostHandler) Update(c *gin.Context) {
	if !h.ownedBy(c, authz.PostUpdate) {
		return
	}
	var req service.UpdatePostInput
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.posts.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "帖子更新成功", post)
}

// Delete 删除帖子；?hard=true 时永久删除（仅管理员）
func (h *PostHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if c.Query("hard") == "true" {
		if !h.ownedBy(c, authz.PostPurge) {
			return
		}
		if err := h.posts.Purge(c.Request.Context(), id); err != nil {
			response.Fail(c, err)
			return
		}
		response.SuccessWithMessage(c, "帖子已永久删除", nil)
		return
	}

	if !h.ownedBy(c, authz.PostDelete) {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "帖子已删除", nil)
}
