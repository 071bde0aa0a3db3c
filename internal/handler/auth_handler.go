package handler

import (
	"fmt"
	"strings"

	"cme-platform/internal/service"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth   *service.AuthService
	points *service.PointsService
}

func NewAuthHandler(auth *service.AuthService, points *service.PointsService) *AuthHandler {
	return &AuthHandler{auth: auth, points: points}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "注册成功", result)
}

// Login 用户登录，account 可以是手机号、邮箱或昵称
func (h *AuthHandler) Login(c *gin.Context) {
	type req struct {
		Account  string `json:"account"`
		Email    string `json:"email"` // 兼容旧客户端
		Password string `json:"password" binding:"required"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	account := strings.TrimSpace(r.Account)
	if account == "" {
		account = strings.TrimSpace(r.Email)
	}
	if account == "" {
		response.Fail(c, errs.Validation("账号不能为空", nil))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), account, r.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "登录成功", result)
}

// Me 当前登录用户
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}

// CheckIn 每日签到
func (h *AuthHandler) CheckIn(c *gin.Context) {
	checkIn, err := h.points.CheckIn(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c,
		fmt.Sprintf("签到成功，获得%d积分（连续%d天）", checkIn.Points, checkIn.ConsecutiveDays),
		gin.H{"checkIn": checkIn},
	)
}

// VerifyMedical 提交医护认证资料
func (h *AuthHandler) VerifyMedical(c *gin.Context) {
	var req service.DoctorProfileInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.VerifyMedical(c.Request.Context(), jwt.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "认证资料已提交，等待审核", user)
}
