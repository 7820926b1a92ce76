package handler

import (
	"time"

	settlementapp "github.com/erp/settlement/internal/application/settlement"
	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler handles settlement-related API endpoints
type SettlementHandler struct {
	BaseHandler
	settlementService *settlementapp.Service
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *settlementapp.Service) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// ===================== Request/Response DTOs =====================

// SettleInstallmentRequest represents an installment settlement request
// @Description Installment settlement request
type SettleInstallmentRequest struct {
	TargetAccountID string   `json:"target_account_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SettlementDate  string   `json:"settlement_date,omitempty" example:"2026-08-30"`
	Amount          *float64 `json:"amount,omitempty" example:"450.00"`
}

// InstallmentResponse represents an installment in API responses
// @Description Installment response
type InstallmentResponse struct {
	ID                  string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DocumentID          string     `json:"document_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Sequence            int        `json:"sequence" example:"1"`
	DueDate             time.Time  `json:"due_date"`
	PrincipalAmount     float64    `json:"principal_amount" example:"500.00"`
	TotalAmount         *float64   `json:"total_amount,omitempty" example:"520.00"`
	CompensationDate    *time.Time `json:"compensation_date,omitempty"`
	Status              string     `json:"status" example:"SETTLED"`
	SettledAt           *time.Time `json:"settled_at,omitempty"`
	SettlementAccountID *string    `json:"settlement_account_id,omitempty"`
}

// DocumentResponse represents a settlement document in API responses
// @Description Settlement document response
type DocumentResponse struct {
	ID               string                   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Number           string                   `json:"number" example:"AP-2026-00001"`
	Polarity         string                   `json:"polarity" example:"PAYABLE"`
	CounterpartyName string                   `json:"counterparty_name" example:"Acme Supplies"`
	TotalAmount      float64                  `json:"total_amount" example:"1500.00"`
	Status           string                   `json:"status" example:"PARTIALLY_SETTLED"`
	SettledAt        *time.Time               `json:"settled_at,omitempty"`
	Locked           bool                     `json:"locked" example:"false"`
	Remark           string                   `json:"remark,omitempty"`
	Counts           *settlement.StatusCounts `json:"installment_counts,omitempty"`
	Installments     []InstallmentResponse    `json:"installments,omitempty"`
}

// LedgerEntryResponse represents a ledger entry in API responses
// @Description Ledger entry response
type LedgerEntryResponse struct {
	ID               string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	AccountID        string    `json:"account_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Direction        string    `json:"direction" example:"DEBIT"`
	Amount           float64   `json:"amount" example:"500.00"`
	Description      string    `json:"description,omitempty"`
	SourceDocumentID string    `json:"source_document_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	SourceScreen     string    `json:"source_screen" example:"PAYABLE_SETTLEMENT"`
	BalanceBefore    float64   `json:"balance_before" example:"1000.00"`
	BalanceAfter     float64   `json:"balance_after" example:"500.00"`
	EntryDate        time.Time `json:"entry_date"`
}

// SettleInstallmentResponse represents the outcome of a settlement
// @Description Installment settlement response
type SettleInstallmentResponse struct {
	Installment      InstallmentResponse     `json:"installment"`
	Document         DocumentResponse        `json:"document"`
	Counts           settlement.StatusCounts `json:"installment_counts"`
	Entry            *LedgerEntryResponse    `json:"entry,omitempty"`
	Amount           float64                 `json:"amount" example:"500.00"`
	AmountSource     string                  `json:"amount_source" example:"TOTAL"`
	DuplicatePosting bool                    `json:"duplicate_posting" example:"false"`
}

func toInstallmentResponse(i *settlement.Installment) InstallmentResponse {
	resp := InstallmentResponse{
		ID:               i.ID.String(),
		DocumentID:       i.DocumentID.String(),
		Sequence:         i.Sequence,
		DueDate:          i.DueDate,
		PrincipalAmount:  i.PrincipalAmount.InexactFloat64(),
		CompensationDate: i.CompensationDate,
		Status:           i.Status.String(),
		SettledAt:        i.SettledAt,
	}
	if i.TotalAmount != nil {
		total := i.TotalAmount.InexactFloat64()
		resp.TotalAmount = &total
	}
	if i.SettlementAccountID != nil {
		accountID := i.SettlementAccountID.String()
		resp.SettlementAccountID = &accountID
	}
	return resp
}

func toDocumentResponse(d *settlement.Document) DocumentResponse {
	return DocumentResponse{
		ID:               d.ID.String(),
		Number:           d.Number,
		Polarity:         d.Polarity.String(),
		CounterpartyName: d.CounterpartyName,
		TotalAmount:      d.TotalAmount.InexactFloat64(),
		Status:           d.Status.String(),
		SettledAt:        d.SettledAt,
		Locked:           d.Locked,
		Remark:           d.Remark,
	}
}

func toLedgerEntryResponse(e *ledger.Entry) *LedgerEntryResponse {
	if e == nil {
		return nil
	}
	return &LedgerEntryResponse{
		ID:               e.ID.String(),
		AccountID:        e.AccountID.String(),
		Direction:        e.Direction.String(),
		Amount:           e.Amount.InexactFloat64(),
		Description:      e.Description,
		SourceDocumentID: e.SourceDocumentID.String(),
		SourceScreen:     e.SourceScreen.String(),
		BalanceBefore:    e.BalanceBefore.InexactFloat64(),
		BalanceAfter:     e.BalanceAfter.InexactFloat64(),
		EntryDate:        e.EntryDate,
	}
}

// ===================== Handlers =====================

// SettleInstallment godoc
// @Summary      Settle an installment
// @Description  Settle an installment into the target account and roll the document status up
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Installment ID" format(uuid)
// @Param        request body SettleInstallmentRequest true "Settlement request"
// @Success      200 {object} dto.Response{data=SettleInstallmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlements/installments/{id}/settle [post]
func (h *SettlementHandler) SettleInstallment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	var req SettleInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	targetAccountID, err := uuid.Parse(req.TargetAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid target account ID format")
		return
	}

	input := settlementapp.SettleInstallmentInput{
		TenantID:        tenantID,
		InstallmentID:   installmentID,
		TargetAccountID: targetAccountID,
	}

	if req.SettlementDate != "" {
		settlementDate, err := parseDateTime(req.SettlementDate)
		if err != nil {
			h.BadRequest(c, "Invalid settlement date format")
			return
		}
		input.SettlementDate = &settlementDate
	}

	if req.Amount != nil {
		input.AmountOverride = toDecimalPtr(*req.Amount)
	}

	// Actor ID for the audit trail (optional, from JWT context)
	if actorID, err := getUserID(c); err == nil {
		input.ActorID = actorID
	}

	result, err := h.settlementService.Settle(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, SettleInstallmentResponse{
		Installment:      toInstallmentResponse(result.Installment),
		Document:         toDocumentResponse(result.Document),
		Counts:           result.Counts,
		Entry:            toLedgerEntryResponse(result.Entry),
		Amount:           result.Amount.InexactFloat64(),
		AmountSource:     string(result.AmountSource),
		DuplicatePosting: result.DuplicatePosting,
	})
}

// GetDocument godoc
// @Summary      Get settlement document by ID
// @Description  Retrieve a settlement document with its installments and status counts
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlements/documents/{id} [get]
func (h *SettlementHandler) GetDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	document, installments, counts, err := h.settlementService.GetDocument(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := toDocumentResponse(document)
	resp.Counts = &counts
	resp.Installments = make([]InstallmentResponse, 0, len(installments))
	for _, installment := range installments {
		resp.Installments = append(resp.Installments, toInstallmentResponse(installment))
	}

	h.Success(c, resp)
}
