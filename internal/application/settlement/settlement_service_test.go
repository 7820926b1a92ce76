package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/erp/settlement/internal/domain/audit"
	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAuditor struct {
	entries []audit.Entry
}

func (r *recordingAuditor) Record(_ context.Context, entry audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

type settleFixture struct {
	svc     *Service
	repos   *memoryRepos
	auditor *recordingAuditor
	account *ledger.Account
	doc     *settlement.Document
	insts   []*settlement.Installment
}

// newSettleFixture seeds one payable document split into the given
// installment principals, plus a bank account to settle into.
func newSettleFixture(t *testing.T, polarity settlement.DocumentPolarity, principals ...int64) *settleFixture {
	t.Helper()
	ctx := context.Background()
	repos := newMemoryRepos()
	auditor := &recordingAuditor{}
	svc := NewService(&memoryScope{repos: repos}, NewStatusAggregator(), auditor, nil)
	tenantID := uuid.New()

	account, err := ledger.NewAccount(tenantID, "BANK-001", "Main bank account", ledger.AccountTypeBank, decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, repos.Accounts().Create(ctx, account))

	total := decimal.Zero
	for _, p := range principals {
		total = total.Add(decimal.NewFromInt(p))
	}
	doc, err := settlement.NewDocument(tenantID, "NF-0042", polarity, "Acme Supplies", total)
	require.NoError(t, err)
	require.NoError(t, repos.Documents().Create(ctx, doc))

	var insts []*settlement.Installment
	for i, p := range principals {
		inst, err := settlement.NewInstallment(tenantID, doc.ID, i+1,
			time.Date(2026, 9, 1+i, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(p))
		require.NoError(t, err)
		require.NoError(t, repos.Installments().Create(ctx, inst))
		insts = append(insts, inst)
	}

	return &settleFixture{svc: svc, repos: repos, auditor: auditor, account: account, doc: doc, insts: insts}
}

func (f *settleFixture) settleInput(inst *settlement.Installment) SettleInstallmentInput {
	return SettleInstallmentInput{
		TenantID:        f.doc.TenantID,
		InstallmentID:   inst.ID,
		TargetAccountID: f.account.ID,
		ActorID:         uuid.New(),
	}
}

func TestService_Settle(t *testing.T) {
	ctx := context.Background()

	t.Run("payable settlement debits account and moves document to partial", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500, 300)

		result, err := f.svc.Settle(ctx, f.settleInput(f.insts[0]))
		require.NoError(t, err)

		assert.True(t, result.Installment.IsSettled())
		assert.Equal(t, settlement.AmountSourcePrincipal, result.AmountSource)
		assert.True(t, result.Amount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, settlement.DocumentStatusPartial, result.Document.Status)
		assert.Equal(t, int64(1), result.Counts.Pending)
		assert.Equal(t, int64(1), result.Counts.Settled)
		assert.False(t, result.DuplicatePosting)

		assert.Equal(t, ledger.EntryDirectionDebit, result.Entry.Direction)
		assert.Equal(t, ledger.SourceScreenPayableInstallment, result.Entry.SourceScreen)
		assert.Equal(t, f.doc.ID, result.Entry.SourceDocumentID)

		saved, err := f.repos.Accounts().FindByIDForTenant(ctx, f.doc.TenantID, f.account.ID)
		require.NoError(t, err)
		assert.True(t, saved.CurrentBalance.Equal(decimal.NewFromInt(500)), "1000 - 500")

		require.Len(t, f.auditor.entries, 1)
		assert.Equal(t, "settlement.installment.settle", f.auditor.entries[0].Action)
	})

	t.Run("receivable settlement credits account", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityReceivable, 200)

		result, err := f.svc.Settle(ctx, f.settleInput(f.insts[0]))
		require.NoError(t, err)

		assert.Equal(t, ledger.EntryDirectionCredit, result.Entry.Direction)
		assert.Equal(t, ledger.SourceScreenReceivableInstallment, result.Entry.SourceScreen)

		saved, err := f.repos.Accounts().FindByIDForTenant(ctx, f.doc.TenantID, f.account.ID)
		require.NoError(t, err)
		assert.True(t, saved.CurrentBalance.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("settling the last installment locks the document", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500, 300)

		_, err := f.svc.Settle(ctx, f.settleInput(f.insts[0]))
		require.NoError(t, err)

		result, err := f.svc.Settle(ctx, f.settleInput(f.insts[1]))
		require.NoError(t, err)

		assert.Equal(t, settlement.DocumentStatusSettled, result.Document.Status)
		assert.True(t, result.Document.Locked)
		assert.NotNil(t, result.Document.SettledAt)
		assert.Equal(t, int64(0), result.Counts.Pending)
		assert.Equal(t, int64(2), result.Counts.Settled)

		// The idempotency key is (parent document, screen), so the second
		// installment's posting is absorbed by the first entry
		assert.True(t, result.DuplicatePosting)
		entries, err := f.repos.Entries().ListByAccount(ctx, f.doc.TenantID, f.account.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("amount override wins over recorded total", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500)
		f.insts[0].WithTotalAmount(decimal.NewFromInt(520))
		require.NoError(t, f.repos.Installments().Save(ctx, f.insts[0]))

		override := decimal.NewFromFloat(450)
		input := f.settleInput(f.insts[0])
		input.AmountOverride = &override

		result, err := f.svc.Settle(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, settlement.AmountSourceOverride, result.AmountSource)
		assert.True(t, result.Amount.Equal(decimal.NewFromInt(450)))
	})

	t.Run("recorded total wins over principal", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500)
		f.insts[0].WithTotalAmount(decimal.NewFromInt(520))
		require.NoError(t, f.repos.Installments().Save(ctx, f.insts[0]))

		result, err := f.svc.Settle(ctx, f.settleInput(f.insts[0]))
		require.NoError(t, err)
		assert.Equal(t, settlement.AmountSourceTotal, result.AmountSource)
		assert.True(t, result.Amount.Equal(decimal.NewFromInt(520)))
	})

	t.Run("compensation date wins over caller date", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500)
		compensation := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
		f.insts[0].WithCompensationDate(compensation)
		require.NoError(t, f.repos.Installments().Save(ctx, f.insts[0]))

		caller := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
		input := f.settleInput(f.insts[0])
		input.SettlementDate = &caller

		result, err := f.svc.Settle(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, result.Installment.SettledAt)
		assert.True(t, result.Installment.SettledAt.Equal(compensation))
		assert.True(t, result.Entry.EntryDate.Equal(compensation))
	})

	t.Run("second settlement attempt fails ALREADY_SETTLED", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500, 300)

		_, err := f.svc.Settle(ctx, f.settleInput(f.insts[0]))
		require.NoError(t, err)

		_, err = f.svc.Settle(ctx, f.settleInput(f.insts[0]))
		assert.ErrorIs(t, err, shared.ErrAlreadySettled)

		// Exactly one ledger entry and an untouched balance
		entries, err := f.repos.Entries().ListByAccount(ctx, f.doc.TenantID, f.account.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("settled locked document rejects further settlement", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500)

		_, err := f.svc.Settle(ctx, f.settleInput(f.insts[0]))
		require.NoError(t, err)

		// A stray pending installment attached after the lock
		extra, err := settlement.NewInstallment(f.doc.TenantID, f.doc.ID, 2,
			time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, f.repos.Installments().Create(ctx, extra))

		_, err = f.svc.Settle(ctx, f.settleInput(extra))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("non-positive override rejected before any write", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500)
		override := decimal.Zero
		input := f.settleInput(f.insts[0])
		input.AmountOverride = &override

		_, err := f.svc.Settle(ctx, input)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)

		reloaded, err := f.repos.Installments().FindByIDForTenant(ctx, f.doc.TenantID, f.insts[0].ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsSettled())
	})

	t.Run("missing target account rejected", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500)
		input := f.settleInput(f.insts[0])
		input.TargetAccountID = uuid.Nil

		_, err := f.svc.Settle(ctx, input)
		assert.ErrorIs(t, err, shared.ErrAccountNotFound)
	})

	t.Run("unknown installment fails not found", func(t *testing.T) {
		f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500)
		input := f.settleInput(f.insts[0])
		input.InstallmentID = uuid.New()

		_, err := f.svc.Settle(ctx, input)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_GetDocument(t *testing.T) {
	ctx := context.Background()
	f := newSettleFixture(t, settlement.DocumentPolarityPayable, 500, 300, 200)

	_, err := f.svc.Settle(ctx, f.settleInput(f.insts[1]))
	require.NoError(t, err)

	doc, insts, counts, err := f.svc.GetDocument(ctx, f.doc.TenantID, f.doc.ID)
	require.NoError(t, err)

	assert.Equal(t, settlement.DocumentStatusPartial, doc.Status)
	require.Len(t, insts, 3)
	assert.Equal(t, 1, insts[0].Sequence)
	assert.Equal(t, 3, insts[2].Sequence)
	assert.Equal(t, int64(2), counts.Pending)
	assert.Equal(t, int64(1), counts.Settled)
}
