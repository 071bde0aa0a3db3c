package handler

import (
	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/service"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	pager
	users *service.UserService
}

func NewUserHandler(users *service.UserService, cfg config.PaginationConfig) *UserHandler {
	return &UserHandler{pager: pager{cfg}, users: users}
}

// List 用户列表（管理员）
func (h *UserHandler) List(c *gin.Context) {
	if !authorize(c, authz.UserList, "") {
		return
	}
	var q service.UserQuery
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	res, err := h.users.Query(c.Request.Context(), q, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

// Create 创建用户（管理员）
func (h *UserHandler) Create(c *gin.Context) {
	if !authorize(c, authz.UserCreate, "") {
		return
	}
	var req service.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户创建成功", user)
}

// Get 用户详情，本人或管理员
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !authorize(c, authz.UserRead, id) {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}

// Update 更新用户资料
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !authorize(c, authz.UserUpdate, id) {
		return
	}
	var req service.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户信息更新成功", user)
}

// Delete 停用用户；?hard=true 时物理删除（仅管理员）
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if c.Query("hard") == "true" {
		if !authorize(c, authz.UserHardDelete, id) {
			return
		}
		if err := h.users.HardDelete(ctx, id); err != nil {
			response.Fail(c, err)
			return
		}
		response.SuccessWithMessage(c, "用户已删除", nil)
		return
	}

	if !authorize(c, authz.UserDelete, id) {
		return
	}
	if err := h.users.SoftDelete(ctx, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户已禁用", nil)
}
