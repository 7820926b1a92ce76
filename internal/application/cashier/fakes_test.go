package cashier

import (
	"context"

	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memoryRepos is an in-memory Repositories implementation backing the
// cashier service tests
type memoryRepos struct {
	sessions  map[uuid.UUID]*cashier.Session
	sales     map[uuid.UUID]*cashier.Sale
	movements []*cashier.Movement
	suspended map[uuid.UUID]*cashier.SuspendedSale
}

func newMemoryRepos() *memoryRepos {
	return &memoryRepos{
		sessions:  make(map[uuid.UUID]*cashier.Session),
		sales:     make(map[uuid.UUID]*cashier.Sale),
		suspended: make(map[uuid.UUID]*cashier.SuspendedSale),
	}
}

func (r *memoryRepos) Sessions() cashier.SessionRepository { return (*sessionStore)(r) }

func (r *memoryRepos) Sales() cashier.SaleRepository { return (*saleStore)(r) }

func (r *memoryRepos) Movements() cashier.MovementRepository { return (*movementStore)(r) }

func (r *memoryRepos) SuspendedSales() cashier.SuspendedSaleRepository { return (*suspendedStore)(r) }

type memoryScope struct {
	repos *memoryRepos
}

func (s *memoryScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

// recordingNotifier captures reversal signals for assertions
type recordingNotifier struct {
	signals []stock.ReversalSignal
}

func (n *recordingNotifier) SignalReversal(_ context.Context, signal stock.ReversalSignal) error {
	n.signals = append(n.signals, signal)
	return nil
}

type sessionStore memoryRepos

func (s *sessionStore) Create(_ context.Context, session *cashier.Session) error {
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *sessionStore) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*cashier.Session, error) {
	session, ok := s.sessions[id]
	if !ok || session.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *sessionStore) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*cashier.Session, error) {
	return s.FindByIDForTenant(ctx, tenantID, id)
}

func (s *sessionStore) FindOpenByOperatorAndRegister(_ context.Context, tenantID, operatorID uuid.UUID, registerCode string) (*cashier.Session, error) {
	for _, session := range s.sessions {
		if session.TenantID == tenantID && session.OperatorID == operatorID &&
			session.RegisterCode == registerCode && session.IsOpen() {
			cp := *session
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *sessionStore) Save(_ context.Context, session *cashier.Session) error {
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

type saleStore memoryRepos

func (s *saleStore) Create(_ context.Context, sale *cashier.Sale) error {
	cp := *sale
	s.sales[sale.ID] = &cp
	return nil
}

func (s *saleStore) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*cashier.Sale, error) {
	sale, ok := s.sales[id]
	if !ok || sale.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *sale
	return &cp, nil
}

func (s *saleStore) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*cashier.Sale, error) {
	return s.FindByIDForTenant(ctx, tenantID, id)
}

func (s *saleStore) ListBySession(_ context.Context, tenantID, sessionID uuid.UUID) ([]*cashier.Sale, error) {
	var result []*cashier.Sale
	for _, sale := range s.sales {
		if sale.TenantID == tenantID && sale.SessionID == sessionID {
			cp := *sale
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *saleStore) SumCompletedBySession(_ context.Context, tenantID, sessionID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, sale := range s.sales {
		if sale.TenantID == tenantID && sale.SessionID == sessionID && sale.IsCompleted() {
			sum = sum.Add(sale.Total)
		}
	}
	return sum, nil
}

func (s *saleStore) SumCompletedByPaymentMethod(_ context.Context, tenantID, sessionID uuid.UUID) (cashier.PaymentBreakdown, error) {
	breakdown := cashier.PaymentBreakdown{}
	for _, sale := range s.sales {
		if sale.TenantID == tenantID && sale.SessionID == sessionID && sale.IsCompleted() {
			breakdown[sale.PaymentMethod] = breakdown[sale.PaymentMethod].Add(sale.Total)
		}
	}
	return breakdown, nil
}

func (s *saleStore) Save(_ context.Context, sale *cashier.Sale) error {
	cp := *sale
	s.sales[sale.ID] = &cp
	return nil
}

type movementStore memoryRepos

func (s *movementStore) Create(_ context.Context, movement *cashier.Movement) error {
	cp := *movement
	s.movements = append(s.movements, &cp)
	return nil
}

func (s *movementStore) ListBySession(_ context.Context, tenantID, sessionID uuid.UUID) ([]*cashier.Movement, error) {
	var result []*cashier.Movement
	for _, m := range s.movements {
		if m.TenantID == tenantID && m.SessionID == sessionID {
			cp := *m
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *movementStore) SumBySessionAndKind(_ context.Context, tenantID, sessionID uuid.UUID, kind cashier.MovementKind) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range s.movements {
		if m.TenantID == tenantID && m.SessionID == sessionID && m.Kind == kind {
			sum = sum.Add(m.Amount)
		}
	}
	return sum, nil
}

type suspendedStore memoryRepos

func (s *suspendedStore) Create(_ context.Context, suspended *cashier.SuspendedSale) error {
	cp := *suspended
	s.suspended[suspended.ID] = &cp
	return nil
}

func (s *suspendedStore) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*cashier.SuspendedSale, error) {
	suspended, ok := s.suspended[id]
	if !ok || suspended.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *suspended
	return &cp, nil
}

func (s *suspendedStore) ListBySession(_ context.Context, tenantID, sessionID uuid.UUID) ([]*cashier.SuspendedSale, error) {
	var result []*cashier.SuspendedSale
	for _, suspended := range s.suspended {
		if suspended.TenantID == tenantID && suspended.SessionID == sessionID {
			cp := *suspended
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *suspendedStore) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	suspended, ok := s.suspended[id]
	if !ok || suspended.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(s.suspended, id)
	return nil
}
