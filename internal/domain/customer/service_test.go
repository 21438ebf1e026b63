package customer

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

type mockRepo struct {
	byID    map[int64]*Customer
	nextID  int64
	created int
	err     error
}

func newMockRepo(customers ...Customer) *mockRepo {
	m := &mockRepo{byID: make(map[int64]*Customer), nextID: 100}
	for i := range customers {
		c := customers[i]
		m.byID[c.ID] = &c
	}
	return m
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, NotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.byID {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, NotFound(email)
}

func (m *mockRepo) ListActive(_ context.Context) ([]Customer, error) {
	var out []Customer
	for _, c := range m.byID {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) Create(_ context.Context, c *Customer) error {
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.byID[c.ID] = &cp
	m.created++
	return nil
}

func (m *mockRepo) Update(_ context.Context, c *Customer) error {
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *mockRepo) SetActive(_ context.Context, id int64, active bool) error {
	m.byID[id].Active = active
	return nil
}

func TestRegister(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	c, err := svc.Register(context.Background(), Input{
		Name:    "  João Silva ",
		Email:   "Joao@Email.com",
		Phone:   "(11) 99999-1111",
		Address: "Rua A, 123",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(101), c.ID)
	assert.Equal(t, "João Silva", c.Name)
	assert.Equal(t, "joao@email.com", c.Email)
	assert.True(t, c.Active)
	assert.Equal(t, 1, repo.created)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockRepo(Customer{ID: 1, Name: "Maria", Email: "maria@email.com", Active: true})
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), Input{Name: "Maria Two", Email: "MARIA@email.com"})

	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
	assert.Equal(t, 0, repo.created)
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Register(context.Background(), Input{Name: "J", Email: "not-an-email", Phone: "123"})

	var vErr *fault.ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := make([]string, len(vErr.Fields))
	for i, f := range vErr.Fields {
		fields[i] = f.Field
	}
	assert.Equal(t, []string{"name", "email", "phone"}, fields)
}

func TestRegister_LookupError(t *testing.T) {
	repo := newMockRepo()
	repo.err = errors.New("connection reset")
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), Input{Name: "Ana", Email: "ana@email.com"})

	require.Error(t, err)
	assert.Equal(t, fault.KindInternal, fault.KindOf(err))
	assert.Contains(t, err.Error(), "check email")
}

func TestUpdate_EmailTakenByOther(t *testing.T) {
	repo := newMockRepo(
		Customer{ID: 1, Name: "João", Email: "joao@email.com", Active: true},
		Customer{ID: 2, Name: "Maria", Email: "maria@email.com", Active: true},
	)
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), 2, Input{Name: "Maria", Email: "joao@email.com"})
	require.Equal(t, fault.KindConflict, fault.KindOf(err))

	c, err := svc.Update(context.Background(), 2, Input{Name: "Maria Santos", Email: "maria@email.com"})
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", c.Name)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Update(context.Background(), 9, Input{Name: "Nobody", Email: "nobody@email.com"})

	var nf *fault.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "customer", nf.Entity)
}

func TestToggleActive(t *testing.T) {
	repo := newMockRepo(Customer{ID: 3, Name: "Pedro", Email: "pedro@email.com", Active: false})
	svc := NewService(repo)

	c, err := svc.ToggleActive(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, c.Active)
	assert.True(t, repo.byID[3].Active)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
