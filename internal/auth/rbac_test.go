package auth

import (
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/mystore/product-catalog/internal"
)

var _ = ginkgo.Describe("Permission gate", func() {
	var gate *Gate

	ginkgo.BeforeEach(func() {
		gate = NewGate()
	})

	ginkgo.It("grants admins every catalog permission", func() {
		for _, perm := range []string{
			PermCreateProduct, PermReadProduct, PermUpdateProduct,
			PermDeleteProduct, PermRestoreProduct, PermViewDeletedProducts,
			PermManageEmployees,
		} {
			gomega.Expect(gate.Allows(RoleAdmin, perm)).To(gomega.Succeed())
		}
	})

	ginkgo.It("never lets an employee delete or restore products", func() {
		gomega.Expect(gate.Allows(RoleEmployee, PermDeleteProduct)).To(gomega.MatchError(internal.ErrPermissionDenied))
		gomega.Expect(gate.Allows(RoleEmployee, PermRestoreProduct)).To(gomega.MatchError(internal.ErrPermissionDenied))
		gomega.Expect(gate.Allows(RoleEmployee, PermViewDeletedProducts)).To(gomega.MatchError(internal.ErrPermissionDenied))
	})

	ginkgo.It("lets employees maintain products short of deletion", func() {
		gomega.Expect(gate.Allows(RoleEmployee, PermCreateProduct)).To(gomega.Succeed())
		gomega.Expect(gate.Allows(RoleEmployee, PermReadProduct)).To(gomega.Succeed())
		gomega.Expect(gate.Allows(RoleEmployee, PermUpdateProduct)).To(gomega.Succeed())
	})

	ginkgo.It("keeps employee administration away from managers", func() {
		gomega.Expect(gate.Allows(RoleManager, PermDeleteProduct)).To(gomega.Succeed())
		gomega.Expect(gate.Allows(RoleManager, PermManageEmployees)).To(gomega.MatchError(internal.ErrPermissionDenied))
	})

	ginkgo.It("matches roles case-insensitively", func() {
		gomega.Expect(gate.Allows("Admin", PermDeleteProduct)).To(gomega.Succeed())
		gomega.Expect(gate.Allows("MANAGER", PermRestoreProduct)).To(gomega.Succeed())
	})

	ginkgo.It("denies empty and unknown roles", func() {
		gomega.Expect(gate.Allows("", PermReadProduct)).To(gomega.MatchError(internal.ErrRoleUndefined))
		gomega.Expect(gate.Allows("intern", PermReadProduct)).To(gomega.MatchError(internal.ErrRoleNotFound))
	})

	ginkgo.It("denies unknown permissions even for admins", func() {
		gomega.Expect(gate.Allows(RoleAdmin, "launch_rockets")).To(gomega.MatchError(internal.ErrPermissionDenied))
	})

	ginkgo.Describe("role checks", func() {
		ginkgo.It("accepts a listed role regardless of case", func() {
			gomega.Expect(gate.HasRole("ADMIN", RoleAdmin)).To(gomega.Succeed())
		})

		ginkgo.It("rejects a known role missing from the allow-list", func() {
			gomega.Expect(gate.HasRole(RoleEmployee, RoleAdmin, RoleManager)).To(gomega.MatchError(internal.ErrAccessDenied))
		})
	})
})

var _ = ginkgo.Describe("Permission middleware", func() {
	var (
		gate *Gate
		next http.Handler
	)

	ginkgo.BeforeEach(func() {
		gate = NewGate()
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	request := func(user *Account) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
		if user != nil {
			req = req.WithContext(ContextWithUser(req.Context(), user))
		}
		rr := httptest.NewRecorder()
		gate.RequirePermission(PermDeleteProduct)(next).ServeHTTP(rr, req)
		return rr
	}

	ginkgo.It("returns 401 when nothing is authenticated", func() {
		gomega.Expect(request(nil).Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("returns 403 when the role lacks the permission", func() {
		rr := request(&Account{ID: 1, Role: RoleEmployee})
		gomega.Expect(rr.Code).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("passes through when the role grants the permission", func() {
		rr := request(&Account{ID: 1, Role: RoleManager})
		gomega.Expect(rr.Code).To(gomega.Equal(http.StatusNoContent))
	})
})
