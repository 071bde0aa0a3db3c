package model

// 用户角色
const (
	RoleUser   = "USER"
	RoleDoctor = "DOCTOR"
	RoleAdmin  = "ADMIN"
)

// 用户状态
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
	UserStatusBanned   = "BANNED"
)

// 用户类型
const (
	UserTypeMedicalStaff = "MEDICAL_STAFF"
	UserTypeNonMedical   = "NON_MEDICAL"
)

// User 用户模型
// 索引与唯一约束：邮箱唯一、手机号唯一（均可为空）
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// 软删除通过 Status=INACTIVE 实现
type User struct {
	Base
	Email             *string `gorm:"type:varchar(128);uniqueIndex;comment:邮箱" json:"email"`
	Phone             *string `gorm:"type:varchar(20);uniqueIndex;comment:手机号" json:"phone"`
	Nickname          string  `gorm:"type:varchar(64);not null;index;comment:昵称" json:"nickname"`
	PasswordHash      string  `gorm:"type:varchar(255);not null;comment:密码哈希" json:"-"`
	Avatar            string  `gorm:"type:varchar(255);comment:头像URL" json:"avatar"`
	Role              string  `gorm:"type:varchar(16);not null;default:USER;comment:角色" json:"role"`
	Status            string  `gorm:"type:varchar(16);not null;default:ACTIVE;index;comment:状态" json:"status"`
	UserType          string  `gorm:"type:varchar(16);not null;default:NON_MEDICAL;comment:用户类型" json:"userType"`
	IsMedicalVerified bool    `gorm:"not null;default:false;comment:是否通过医护认证" json:"isMedicalVerified"`

	DoctorProfile *Doctor `gorm:"foreignKey:UserID;-:migration" json:"doctorProfile,omitempty"`
}

// TableName user 为保留字，使用 user_account
func (User) TableName() string { return "user_account" }

// IsActive 是否可用
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// EmailValue 邮箱（空指针返回空串）
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
