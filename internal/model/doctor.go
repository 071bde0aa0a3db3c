package model

// Doctor 医生资料，与用户一对一
type Doctor struct {
	Base
	UserID        string `gorm:"type:varchar(36);not null;uniqueIndex;comment:用户ID" json:"userId"`
	Title         string `gorm:"type:varchar(64);comment:职称" json:"title"`
	Hospital      string `gorm:"type:varchar(128);comment:医院" json:"hospital"`
	Department    string `gorm:"type:varchar(64);index;comment:科室" json:"department"`
	Specialty     string `gorm:"type:varchar(255);comment:专长" json:"specialty"`
	Experience    int    `gorm:"not null;default:0;comment:从业年限" json:"experience"`
	Certification string `gorm:"type:varchar(255);comment:资格证书" json:"certification"`
	Bio           string `gorm:"type:text;comment:简介" json:"bio"`
	IsVerified    bool   `gorm:"not null;default:false;index;comment:是否已审核" json:"isVerified"`

	User *UserBrief `gorm:"foreignKey:UserID;-:migration" json:"user,omitempty"`
}

// Expert 专家，在医生资料基础上的展示信息
type Expert struct {
	Base
	DoctorID     string `gorm:"type:varchar(36);not null;index;comment:医生ID" json:"doctorId"`
	Photo        string `gorm:"type:varchar(255);comment:照片" json:"photo"`
	Introduction string `gorm:"type:text;comment:介绍" json:"introduction"`
	Achievements string `gorm:"type:text;comment:成就" json:"achievements"`
	IsFeatured   bool   `gorm:"not null;default:false;index;comment:是否推荐" json:"isFeatured"`
	SortOrder    int    `gorm:"not null;default:0;comment:排序" json:"sortOrder"`

	Doctor *Doctor `gorm:"foreignKey:DoctorID;-:migration" json:"doctor,omitempty"`
}
