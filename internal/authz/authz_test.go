package authz

import (
	"testing"

	"cme-platform/internal/model"
	"cme-platform/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeMatrix(t *testing.T) {
	admin := Subject{UserID: "admin", Role: model.RoleAdmin}
	doctor := Subject{UserID: "doc", Role: model.RoleDoctor}
	user := Subject{UserID: "u1", Role: model.RoleUser}

	cases := []struct {
		name    string
		subject Subject
		action  Action
		owner   string
		code    string // 空表示允许
	}{
		{"admin lists users", admin, UserList, "", ""},
		{"user lists users", user, UserList, "", errs.CodeUnauthorized},
		{"user reads self", user, UserRead, "u1", ""},
		{"user reads other", user, UserRead, "u2", errs.CodeForbidden},
		{"admin reads other", admin, UserRead, "u2", ""},
		{"user hard deletes self", user, UserHardDelete, "u1", errs.CodeUnauthorized},
		{"user creates own post", user, PostCreate, "u1", ""},
		{"user creates post for other", user, PostCreate, "u2", errs.CodeForbidden},
		{"admin creates post for other", admin, PostCreate, "u2", ""},
		{"user purges own post", user, PostPurge, "u1", errs.CodeUnauthorized},
		{"user authors course", user, CourseCreate, "u1", errs.CodeUnauthorized},
		{"doctor authors course", doctor, CourseCreate, "doc", ""},
		{"doctor authors for other", doctor, CourseCreate, "u1", errs.CodeForbidden},
		{"doctor edits other course", doctor, CourseUpdate, "u1", errs.CodeForbidden},
		{"user pays own order", user, OrderPay, "u1", ""},
		{"user pays other order", user, OrderPay, "u2", errs.CodeForbidden},
		{"doctor verifies doctor", doctor, DoctorVerify, "doc", errs.CodeUnauthorized},
		{"user creates live", user, LiveCreate, "", errs.CodeUnauthorized},
		{"anonymous", Subject{}, PostCreate, "", errs.CodeUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.subject, tc.action, tc.owner)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errs.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestUnknownActionDenied(t *testing.T) {
	err := Authorize(Subject{UserID: "u1", Role: model.RoleUser}, Action("nope"), "u1")
	assert.True(t, errs.HasCode(err, errs.CodeForbidden))
}
