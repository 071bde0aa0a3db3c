package repository

import (
	"strings"

	"gorm.io/gorm"
)

// Page 分页参数
type Page struct {
	Offset int
	Limit  int
}

// NewPage 根据页码与每页条数构建分页参数
func NewPage(page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	return Page{Offset: (page - 1) * pageSize, Limit: pageSize}
}

// findPage 统计总数并查询当前页
// query 需已包含 Model 与过滤条件，排序与预加载在查询页时生效
func findPage[T any](query *gorm.DB, page Page, dest *[]T, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		*dest = []T{}
		return 0, nil
	}
	err := query.Session(&gorm.Session{}).
		Scopes(scopes...).
		Offset(page.Offset).
		Limit(page.Limit).
		Find(dest).Error
	return total, err
}

// likeEscaper 以 ! 为转义符转义 LIKE 通配符
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// like 构建包含匹配的模式，关键字按字面匹配
func like(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

// likeExpr 单列包含匹配条件
func likeExpr(column string) string {
	return column + " LIKE ? ESCAPE '!'"
}

// containsAny 任一列包含关键字
func containsAny(db *gorm.DB, keyword string, columns ...string) *gorm.DB {
	pattern := like(keyword)
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		conds[i] = likeExpr(column)
		args[i] = pattern
	}
	return db.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// increment 计数字段自增（delta 可为负）
func increment(column string, delta int) map[string]interface{} {
	return map[string]interface{}{column: gorm.Expr(column+" + ?", delta)}
}
