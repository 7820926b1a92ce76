package handler

import (
	"time"

	ledgerapp "github.com/erp/settlement/internal/application/ledger"
	"github.com/erp/settlement/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles ledger-related API endpoints
type LedgerHandler struct {
	BaseHandler
	accountService *ledgerapp.AccountService
	postingService *ledgerapp.PostingService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(accountService *ledgerapp.AccountService, postingService *ledgerapp.PostingService) *LedgerHandler {
	return &LedgerHandler{
		accountService: accountService,
		postingService: postingService,
	}
}

// ===================== Request/Response DTOs =====================

// CreateAccountRequest represents an account creation request
// @Description Account creation request
type CreateAccountRequest struct {
	Code           string  `json:"code" binding:"required" example:"CASH-01"`
	Name           string  `json:"name" binding:"required" example:"Main cash account"`
	Type           string  `json:"type" binding:"required" example:"CASH"`
	OpeningBalance float64 `json:"opening_balance" example:"0.00"`
}

// AccountResponse represents a financial account in API responses
// @Description Financial account response
type AccountResponse struct {
	ID             string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Code           string  `json:"code" example:"CASH-01"`
	Name           string  `json:"name" example:"Main cash account"`
	Type           string  `json:"type" example:"CASH"`
	OpeningBalance float64 `json:"opening_balance" example:"0.00"`
	CurrentBalance float64 `json:"current_balance" example:"300.00"`
	Active         bool    `json:"active" example:"true"`
}

// PostEntryRequest represents a manual ledger posting request
// @Description Manual ledger posting request
type PostEntryRequest struct {
	AccountID        string  `json:"account_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Direction        string  `json:"direction" binding:"required" example:"CREDIT"`
	Amount           float64 `json:"amount" binding:"required" example:"100.00"`
	Description      string  `json:"description,omitempty" example:"Opening correction"`
	SourceDocumentID string  `json:"source_document_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440001"`
	EntryDate        string  `json:"entry_date,omitempty" example:"2026-08-30"`
}

// PostEntryResponse represents the outcome of a ledger posting
// @Description Ledger posting response
type PostEntryResponse struct {
	Entry     LedgerEntryResponse `json:"entry"`
	Duplicate bool                `json:"duplicate" example:"false"`
}

// VerifyBalanceResponse reports whether the cached balance matches the entry log
// @Description Balance verification response
type VerifyBalanceResponse struct {
	AccountID  string  `json:"account_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Consistent bool    `json:"consistent" example:"true"`
	Derived    float64 `json:"derived_balance" example:"300.00"`
}

// RebuildSnapshotsResponse reports the rebuilt balance
// @Description Snapshot rebuild response
type RebuildSnapshotsResponse struct {
	AccountID string  `json:"account_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Balance   float64 `json:"balance" example:"300.00"`
}

func toAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID.String(),
		Code:           a.Code,
		Name:           a.Name,
		Type:           a.Type.String(),
		OpeningBalance: a.OpeningBalance.InexactFloat64(),
		CurrentBalance: a.CurrentBalance.InexactFloat64(),
		Active:         a.Active,
	}
}

// ===================== Handlers =====================

// CreateAccount godoc
// @Summary      Create a financial account
// @Description  Open a new financial account with a tenant-unique code
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateAccountRequest true "Account creation request"
// @Success      201 {object} dto.Response{data=AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/accounts [post]
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), ledgerapp.CreateAccountInput{
		TenantID:       tenantID,
		Code:           req.Code,
		Name:           req.Name,
		Type:           ledger.AccountType(req.Type),
		OpeningBalance: toDecimal(req.OpeningBalance),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toAccountResponse(account))
}

// GetAccount godoc
// @Summary      Get account by ID
// @Description  Retrieve a financial account, including its cached current balance
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/accounts/{id} [get]
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.Get(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAccountResponse(account))
}

// ListEntries godoc
// @Summary      List account entries
// @Description  Retrieve the full ledger entry log of an account in posting order
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]LedgerEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/entries [get]
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	entries, err := h.accountService.ListEntries(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, *toLedgerEntryResponse(entry))
	}

	h.Success(c, responses)
}

// PostEntry godoc
// @Summary      Post a manual ledger entry
// @Description  Append a manual adjustment entry to an account; retried requests are absorbed
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body PostEntryRequest true "Posting request"
// @Success      201 {object} dto.Response{data=PostEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/entries [post]
func (h *LedgerHandler) PostEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	sourceDocumentID, err := uuid.Parse(req.SourceDocumentID)
	if err != nil {
		h.BadRequest(c, "Invalid source document ID format")
		return
	}

	entryDate := time.Now()
	if req.EntryDate != "" {
		entryDate, err = parseDateTime(req.EntryDate)
		if err != nil {
			h.BadRequest(c, "Invalid entry date format")
			return
		}
	}

	result, err := h.postingService.Post(c.Request.Context(), ledgerapp.PostInput{
		TenantID:         tenantID,
		AccountID:        accountID,
		Direction:        ledger.EntryDirection(req.Direction),
		Amount:           toDecimal(req.Amount),
		Description:      req.Description,
		SourceDocumentID: sourceDocumentID,
		SourceScreen:     ledger.SourceScreenManualAdjustment,
		EntryDate:        entryDate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, PostEntryResponse{
		Entry:     *toLedgerEntryResponse(result.Entry),
		Duplicate: result.Duplicate,
	})
}

// RebuildSnapshots godoc
// @Summary      Rebuild balance snapshots
// @Description  Drop and rebuild the balance snapshot cache of an account from its entry log
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=RebuildSnapshotsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/rebuild [post]
func (h *LedgerHandler) RebuildSnapshots(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	balance, err := h.postingService.RebuildSnapshots(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, RebuildSnapshotsResponse{
		AccountID: accountID.String(),
		Balance:   balance.InexactFloat64(),
	})
}

// VerifyBalance godoc
// @Summary      Verify account balance
// @Description  Recompute the balance from entry aggregates and compare it to the cached value
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=VerifyBalanceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/verify [get]
func (h *LedgerHandler) VerifyBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	consistent, derived, err := h.postingService.VerifyBalance(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, VerifyBalanceResponse{
		AccountID:  accountID.String(),
		Consistent: consistent,
		Derived:    derived.InexactFloat64(),
	})
}
