package service

import (
	"time"

	"cme-platform/internal/repository"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/errs"
)

// PageResult 分页结果
type PageResult[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

func newPageResult[T any](items []T, total int64, page, pageSize int) *PageResult[T] {
	return &PageResult[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
}

func pageOf(page, pageSize int) repository.Page {
	return repository.NewPage(page, pageSize)
}

// notFoundOr 记录不存在时转换为 NotFound，其余错误原样返回
func notFoundOr(err error, message string) error {
	if dbPkg.IsNotFound(err) {
		return errs.NotFound(message)
	}
	return err
}

// conflictOr 唯一约束冲突时转换为 Conflict
func conflictOr(err error, message string) error {
	if dbPkg.IsDuplicateKey(err) {
		return errs.Conflict(message)
	}
	return err
}

// startOfDay 本地时区当天零点
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func strPtr(s string) *string {
	return &s
}

// optional 空串视为未提供
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
