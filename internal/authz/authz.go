// Package authz 统一的权限判定
// 所有处理器通过 Authorize(主体, 动作, 资源所有者) 判定是否允许操作
package authz

import (
	"cme-platform/internal/model"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/jwt"
)

// Action 受控动作
type Action string

const (
	UserList       Action = "user:list"
	UserCreate     Action = "user:create"
	UserRead       Action = "user:read"
	UserUpdate     Action = "user:update"
	UserDelete     Action = "user:delete"
	UserHardDelete Action = "user:hard-delete"

	CourseCreate   Action = "course:create"
	CourseUpdate   Action = "course:update"
	CourseAddVideo Action = "course:add-video"
	CategoryCreate Action = "category:create"

	OrderCreate Action = "order:create"
	OrderRead   Action = "order:read"
	OrderPay    Action = "order:pay"
	OrderCancel Action = "order:cancel"

	PostCreate Action = "post:create"
	PostUpdate Action = "post:update"
	PostDelete Action = "post:delete"
	PostPurge  Action = "post:purge"

	DoctorCreate Action = "doctor:create"
	DoctorUpdate Action = "doctor:update"
	DoctorVerify Action = "doctor:verify"

	ExpertCreate   Action = "expert:create"
	LiveCreate     Action = "live:create"
	LiveUpdate     Action = "live:update"
	ResourceCreate Action = "resource:create"
)

type rule struct {
	roles []string // 允许的角色，空表示不限角色
	owner bool     // 是否要求为资源所有者
}

var (
	adminOnly = rule{roles: []string{model.RoleAdmin}}
	ownerOnly = rule{owner: true}
)

var policy = map[Action]rule{
	UserList:       adminOnly,
	UserCreate:     adminOnly,
	UserRead:       ownerOnly,
	UserUpdate:     ownerOnly,
	UserDelete:     ownerOnly,
	UserHardDelete: adminOnly,

	CourseCreate:   {roles: []string{model.RoleDoctor, model.RoleAdmin}, owner: true},
	CourseUpdate:   {roles: []string{model.RoleDoctor, model.RoleAdmin}, owner: true},
	CourseAddVideo: {roles: []string{model.RoleDoctor, model.RoleAdmin}, owner: true},
	CategoryCreate: adminOnly,

	OrderCreate: ownerOnly,
	OrderRead:   ownerOnly,
	OrderPay:    ownerOnly,
	OrderCancel: ownerOnly,

	PostCreate: ownerOnly,
	PostUpdate: ownerOnly,
	PostDelete: ownerOnly,
	PostPurge:  adminOnly,

	DoctorCreate: ownerOnly,
	DoctorUpdate: ownerOnly,
	DoctorVerify: adminOnly,

	ExpertCreate:   adminOnly,
	LiveCreate:     adminOnly,
	LiveUpdate:     adminOnly,
	ResourceCreate: adminOnly,
}

// Subject 操作主体
type Subject struct {
	UserID string
	Role   string
}

// IsAdmin 是否管理员
func (s Subject) IsAdmin() bool { return s.Role == model.RoleAdmin }

// Authorize 判定主体能否对所有者为 ownerID 的资源执行 action
// 管理员允许一切；角色不足返回 Unauthorized；非本人资源返回 Forbidden
func Authorize(subject Subject, action Action, ownerID string) error {
	if subject.UserID == "" {
		return errs.Unauthorized("")
	}
	if subject.IsAdmin() {
		return nil
	}

	r, ok := policy[action]
	if !ok {
		return errs.Forbidden("")
	}

	if len(r.roles) > 0 {
		if err := jwt.RequireRole(subject.Role, r.roles...); err != nil {
			return err
		}
	}
	if r.owner && subject.UserID != ownerID {
		return errs.Forbidden(forbiddenMessage(action))
	}
	return nil
}

func forbiddenMessage(action Action) string {
	switch action {
	case PostCreate:
		return "只能为自己创建帖子"
	case OrderCreate:
		return "只能为自己创建订单"
	case DoctorCreate:
		return "只能为自己创建医生资料"
	case CourseCreate:
		return "只能以自己的身份创建课程"
	default:
		return "无权操作该资源"
	}
}
