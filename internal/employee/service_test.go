package employee

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal"
	"github.com/mystore/product-catalog/internal/auth"
	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
	"github.com/mystore/product-catalog/internal/core/events"
)

func TestEmployee(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Employee Module Suite")
}

type mockEmployeeRepository struct {
	accounts map[int64]*datamodel.Account
	nextID   int64
}

func newMockEmployeeRepository() *mockEmployeeRepository {
	return &mockEmployeeRepository{
		accounts: make(map[int64]*datamodel.Account),
		nextID:   1,
	}
}

func (m *mockEmployeeRepository) Create(rec *datamodel.Account) error {
	rec.ID = m.nextID
	m.nextID++
	m.accounts[rec.ID] = rec
	return nil
}

func (m *mockEmployeeRepository) GetByID(id int64) (*datamodel.Account, error) {
	if rec, ok := m.accounts[id]; ok {
		return rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepository) GetByEmail(email string) (*datamodel.Account, error) {
	for _, rec := range m.accounts {
		if rec.Email == email {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepository) List(q ListQuery) ([]*datamodel.Account, error) {
	var out []*datamodel.Account
	for _, rec := range m.accounts {
		if rec.EmployeeID == nil {
			continue
		}
		if q.Role != "" && rec.Role != q.Role {
			continue
		}
		if q.IsActive != nil && rec.IsActive != *q.IsActive {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockEmployeeRepository) LastEmployeeID() (string, error) {
	last := ""
	for _, rec := range m.accounts {
		if rec.EmployeeID != nil && *rec.EmployeeID > last {
			last = *rec.EmployeeID
		}
	}
	if last == "" {
		return "", gorm.ErrRecordNotFound
	}
	return last, nil
}

func (m *mockEmployeeRepository) SetActive(id int64, active bool) error {
	if rec, ok := m.accounts[id]; ok {
		rec.IsActive = active
	}
	return nil
}

func (m *mockEmployeeRepository) ClearRefreshToken(id int64) error {
	if rec, ok := m.accounts[id]; ok {
		rec.RefreshToken = nil
	}
	return nil
}

func (m *mockEmployeeRepository) UpdatePassword(id int64, passwordHash string, firstLogin bool) error {
	if rec, ok := m.accounts[id]; ok {
		rec.PasswordHash = passwordHash
		rec.IsFirstLogin = firstLogin
	}
	return nil
}

func (m *mockEmployeeRepository) Update(rec *datamodel.Account) error {
	m.accounts[rec.ID] = rec
	return nil
}

// capturingBus records published events so tests can inspect payloads.
type capturingBus struct {
	events []map[string]interface{}
	types  []string
}

func (b *capturingBus) Publish(_ context.Context, event events.Event) error {
	b.types = append(b.types, event.EventType())
	if data, ok := event.Payload().(map[string]interface{}); ok {
		b.events = append(b.events, data)
	}
	return nil
}

var _ = ginkgo.Describe("Employee provisioning", func() {
	var (
		repo *mockEmployeeRepository
		bus  *capturingBus
		svc  *Service
	)

	ginkgo.BeforeEach(func() {
		repo = newMockEmployeeRepository()
		bus = &capturingBus{}
		svc = NewService(repo, bus, bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	ginkgo.It("issues sequential badge numbers", func() {
		first, err := svc.Create(1, CreateDTO{Name: "Ada", Email: "ada@example.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(first.EmployeeID).To(gomega.Equal("EMP001"))

		second, err := svc.Create(1, CreateDTO{Name: "Bob", Email: "bob@example.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(second.EmployeeID).To(gomega.Equal("EMP002"))
	})

	ginkgo.It("creates accounts ready to log in but forced to change password", func() {
		created, err := svc.Create(1, CreateDTO{Name: "Ada", Email: "ada@example.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		rec := repo.accounts[created.ID]
		gomega.Expect(rec.IsVerified).To(gomega.BeTrue())
		gomega.Expect(rec.IsActive).To(gomega.BeTrue())
		gomega.Expect(rec.IsFirstLogin).To(gomega.BeTrue())
		gomega.Expect(*rec.CreatedBy).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("mails the initial credentials and stores only the hash", func() {
		created, err := svc.Create(1, CreateDTO{Name: "Ada", Email: "ada@example.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(bus.types).To(gomega.ContainElement(events.EventEmployeeCreated))

		password, _ := bus.events[0]["password"].(string)
		gomega.Expect(password).To(gomega.HaveLen(12))

		rec := repo.accounts[created.ID]
		gomega.Expect(rec.PasswordHash).ToNot(gomega.Equal(password))
		gomega.Expect(bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password))).To(gomega.Succeed())
	})

	ginkgo.It("rejects duplicate emails", func() {
		_, err := svc.Create(1, CreateDTO{Name: "Ada", Email: "ada@example.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = svc.Create(1, CreateDTO{Name: "Copy", Email: "ada@example.com"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrEmailTaken))
	})

	ginkgo.It("refuses the admin role", func() {
		_, err := svc.Create(1, CreateDTO{Name: "Eve", Email: "eve@example.com", Role: auth.RoleAdmin})
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("Employee lifecycle", func() {
	var (
		repo *mockEmployeeRepository
		bus  *capturingBus
		svc  *Service
		emp  *Employee
	)

	ginkgo.BeforeEach(func() {
		repo = newMockEmployeeRepository()
		bus = &capturingBus{}
		svc = NewService(repo, bus, bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))

		var err error
		emp, err = svc.Create(1, CreateDTO{Name: "Ada", Email: "ada@example.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.It("revokes the session when deactivating", func() {
		token := "active-refresh-token"
		repo.accounts[emp.ID].RefreshToken = &token

		toggled, err := svc.ToggleStatus(emp.ID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(toggled.IsActive).To(gomega.BeFalse())
		gomega.Expect(repo.accounts[emp.ID].RefreshToken).To(gomega.BeNil())
	})

	ginkgo.It("reactivates without touching credentials", func() {
		_, err := svc.ToggleStatus(emp.ID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		toggled, err := svc.ToggleStatus(emp.ID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(toggled.IsActive).To(gomega.BeTrue())
	})

	ginkgo.It("resets the password, revokes the session and mails new credentials", func() {
		token := "active-refresh-token"
		repo.accounts[emp.ID].RefreshToken = &token
		before := repo.accounts[emp.ID].PasswordHash

		gomega.Expect(svc.ResetPassword(emp.ID)).To(gomega.Succeed())

		rec := repo.accounts[emp.ID]
		gomega.Expect(rec.PasswordHash).ToNot(gomega.Equal(before))
		gomega.Expect(rec.IsFirstLogin).To(gomega.BeTrue())
		gomega.Expect(rec.RefreshToken).To(gomega.BeNil())
		gomega.Expect(bus.types).To(gomega.ContainElement(events.EventEmployeePasswordReset))
	})

	ginkgo.It("deletes by deactivating, idempotently", func() {
		gomega.Expect(svc.Delete(emp.ID)).To(gomega.Succeed())
		gomega.Expect(repo.accounts[emp.ID].IsActive).To(gomega.BeFalse())

		gomega.Expect(svc.Delete(emp.ID)).To(gomega.Succeed())
	})

	ginkgo.It("never toggles or deletes an admin", func() {
		admin := &datamodel.Account{Name: "Root", Email: "root@example.com", Role: auth.RoleAdmin}
		badge := "EMP999"
		admin.EmployeeID = &badge
		gomega.Expect(repo.Create(admin)).To(gomega.Succeed())

		_, err := svc.ToggleStatus(admin.ID)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrAccessDenied))
		gomega.Expect(svc.Delete(admin.ID)).To(gomega.MatchError(internal.ErrAccessDenied))
	})

	ginkgo.It("filters the directory by activation", func() {
		_, err := svc.Create(1, CreateDTO{Name: "Bob", Email: "bob@example.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(svc.Delete(emp.ID)).To(gomega.Succeed())

		active := true
		listed, err := svc.List(ListQuery{IsActive: &active})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(listed).To(gomega.HaveLen(1))
		gomega.Expect(listed[0].Name).To(gomega.Equal("Bob"))
	})
})
