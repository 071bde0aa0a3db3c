package handler

import (
	"cme-platform/config"
	"cme-platform/internal/authz"
	"cme-platform/internal/service"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	pager
	doctors *service.DoctorService
}

func NewDoctorHandler(doctors *service.DoctorService, cfg config.PaginationConfig) *DoctorHandler {
	return &DoctorHandler{pager: pager{cfg}, doctors: doctors}
}

func (h *DoctorHandler) List(c *gin.Context) {
	var q service.DoctorQuery
	page, ok := h.bindList(c, &q)
	if !ok {
		return
	}
	res, err := h.doctors.Query(c.Request.Context(), q, page.Page, page.PageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	paginated(c, res)
}

// Create 创建医生资料，未指定用户时为当前用户
func (h *DoctorHandler) Create(c *gin.Context) {
	req := service.CreateDoctorInput{UserID: jwt.GetUserID(c)}
	if !bindJSON(c, &req) {
		return
	}
	if !authorize(c, authz.DoctorCreate, req.UserID) {
		return
	}
	doctor, err := h.doctors.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "医生资料创建成功", doctor)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	doctor, err := h.doctors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, doctor)
}

// GetByUser 按用户查询医生资料
func (h *DoctorHandler) GetByUser(c *gin.Context) {
	doctor, err := h.doctors.GetByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, doctor)
}

// Update 更新医生资料，本人或管理员
func (h *DoctorHandler) Update(c *gin.Context) {
	doctor, err := h.doctors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	if !authorize(c, authz.DoctorUpdate, doctor.UserID) {
		return
	}
	var req service.UpdateDoctorInput
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.doctors.Update(c.Request.Context(), doctor.ID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "医生资料更新成功", updated)
}

// Verify 审核医生资料（管理员）
func (h *DoctorHandler) Verify(c *gin.Context) {
	if !authorize(c, authz.DoctorVerify, "") {
		return
	}
	doctor, err := h.doctors.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "审核通过", doctor)
}
