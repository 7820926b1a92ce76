package handler

import (
	"time"

	cashierapp "github.com/erp/settlement/internal/application/cashier"
	"github.com/erp/settlement/internal/domain/cashier"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CashierHandler handles cash session API endpoints
type CashierHandler struct {
	BaseHandler
	sessionService  *cashierapp.SessionService
	reversalService *cashierapp.ReversalService
}

// NewCashierHandler creates a new CashierHandler
func NewCashierHandler(sessionService *cashierapp.SessionService, reversalService *cashierapp.ReversalService) *CashierHandler {
	return &CashierHandler{
		sessionService:  sessionService,
		reversalService: reversalService,
	}
}

// ===================== Request/Response DTOs =====================

// OpenSessionRequest represents a session open request
// @Description Cash session open request
type OpenSessionRequest struct {
	RegisterCode string  `json:"register_code" binding:"required" example:"REG-01"`
	OpeningFloat float64 `json:"opening_float" example:"100.00"`
}

// OpenSessionResponse represents a session open result
// @Description Cash session open response
type OpenSessionResponse struct {
	SessionID string    `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	OpenedAt  time.Time `json:"opened_at"`
}

// SessionResponse represents a cash session in API responses
// @Description Cash session response
type SessionResponse struct {
	ID             string                   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	OperatorID     string                   `json:"operator_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	RegisterCode   string                   `json:"register_code" example:"REG-01"`
	OpeningFloat   float64                  `json:"opening_float" example:"100.00"`
	OpenedAt       time.Time                `json:"opened_at"`
	Status         string                   `json:"status" example:"OPEN"`
	ClosedAt       *time.Time               `json:"closed_at,omitempty"`
	ExpectedAmount *float64                 `json:"expected_amount,omitempty" example:"400.00"`
	CountedAmount  *float64                 `json:"counted_amount,omitempty" example:"398.50"`
	Variance       *float64                 `json:"variance,omitempty" example:"-1.50"`
	Breakdown      cashier.PaymentBreakdown `json:"breakdown_by_payment_method,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
}

// RecordSaleRequest represents a completed sale record request
// @Description Completed sale record request
type RecordSaleRequest struct {
	Total         float64 `json:"total" binding:"required" example:"59.90"`
	PaymentMethod string  `json:"payment_method" binding:"required" example:"CASH"`
}

// RecordSaleResponse represents a recorded sale
// @Description Completed sale record response
type RecordSaleResponse struct {
	SaleID      string    `json:"sale_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CompletedAt time.Time `json:"completed_at"`
}

// RecordMovementRequest represents a manual cash movement request
// @Description Manual cash movement request
type RecordMovementRequest struct {
	Kind   string  `json:"kind" binding:"required" example:"CASH_OUT"`
	Amount float64 `json:"amount" binding:"required" example:"50.00"`
	Reason string  `json:"reason" binding:"required" example:"Supplier COD payment"`
}

// RecordMovementResponse represents a recorded movement
// @Description Manual cash movement response
type RecordMovementResponse struct {
	MovementID string `json:"movement_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// CloseSessionRequest represents a session close request
// @Description Cash session close request
type CloseSessionRequest struct {
	// Pointer so an omitted count is rejected while an explicit 0.00 stays valid.
	CountedAmount *float64 `json:"counted_amount" binding:"required" example:"398.50"`
	Notes         string   `json:"notes,omitempty" example:"Short by small change"`
}

// CloseSessionResponse represents the reconciliation outcome of a close
// @Description Cash session close response
type CloseSessionResponse struct {
	SessionID string                   `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Expected  float64                  `json:"expected" example:"400.00"`
	Counted   float64                  `json:"counted" example:"398.50"`
	Variance  float64                  `json:"variance" example:"-1.50"`
	Breakdown cashier.PaymentBreakdown `json:"breakdown_by_payment_method"`
	ClosedAt  time.Time                `json:"closed_at"`
}

// SuspendSaleRequest represents a cart suspension request
// @Description Cart suspension request
type SuspendSaleRequest struct {
	Label       string `json:"label,omitempty" example:"Customer fetching wallet"`
	CartPayload string `json:"cart_payload" binding:"required"`
}

// SuspendSaleResponse represents a suspended cart
// @Description Cart suspension response
type SuspendSaleResponse struct {
	SuspendedSaleID string    `json:"suspended_sale_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SuspendedAt     time.Time `json:"suspended_at"`
}

// SuspendedSaleResponse represents a resumed cart payload
// @Description Resumed cart response
type SuspendedSaleResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID   string    `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	OperatorID  string    `json:"operator_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	Label       string    `json:"label,omitempty"`
	CartPayload string    `json:"cart_payload"`
	SuspendedAt time.Time `json:"suspended_at"`
}

// CancelSaleRequest represents a sale cancellation request
// @Description Sale cancellation request
type CancelSaleRequest struct {
	Justification string `json:"justification" binding:"required" example:"Customer returned the goods"`
}

// CancelSaleResponse represents a cancelled sale
// @Description Sale cancellation response
type CancelSaleResponse struct {
	SaleID      string    `json:"sale_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	MovementID  string    `json:"movement_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func toSessionResponse(s *cashier.Session) SessionResponse {
	resp := SessionResponse{
		ID:           s.ID.String(),
		OperatorID:   s.OperatorID.String(),
		RegisterCode: s.RegisterCode,
		OpeningFloat: s.OpeningFloat.InexactFloat64(),
		OpenedAt:     s.OpenedAt,
		Status:       s.Status.String(),
		ClosedAt:     s.ClosedAt,
		Breakdown:    s.Breakdown,
		Notes:        s.Notes,
	}
	if s.ExpectedAmount != nil {
		expected := s.ExpectedAmount.InexactFloat64()
		resp.ExpectedAmount = &expected
	}
	if s.CountedAmount != nil {
		counted := s.CountedAmount.InexactFloat64()
		resp.CountedAmount = &counted
	}
	if s.Variance != nil {
		variance := s.Variance.InexactFloat64()
		resp.Variance = &variance
	}
	return resp
}

// ===================== Handlers =====================

// OpenSession godoc
// @Summary      Open a cash session
// @Description  Open a new cash session for the authenticated operator on a register
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body OpenSessionRequest true "Session open request"
// @Success      201 {object} dto.Response{data=OpenSessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-sessions [post]
func (h *CashierHandler) OpenSession(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	operatorID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.sessionService.Open(c.Request.Context(), cashierapp.OpenSessionInput{
		TenantID:     tenantID,
		OperatorID:   operatorID,
		RegisterCode: req.RegisterCode,
		OpeningFloat: toDecimal(req.OpeningFloat),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, OpenSessionResponse{
		SessionID: result.SessionID.String(),
		OpenedAt:  result.OpenedAt,
	})
}

// GetSession godoc
// @Summary      Get cash session by ID
// @Description  Retrieve a cash session, including the reconciliation figures once closed
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-sessions/{id} [get]
func (h *CashierHandler) GetSession(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSessionResponse(session))
}

// RecordSale godoc
// @Summary      Record a completed sale
// @Description  Append a completed sale to an open cash session
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body RecordSaleRequest true "Sale record request"
// @Success      201 {object} dto.Response{data=RecordSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-sessions/{id}/sales [post]
func (h *CashierHandler) RecordSale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actorID, _ := getUserID(c)

	result, err := h.sessionService.RecordSale(c.Request.Context(), cashierapp.RecordSaleInput{
		TenantID:      tenantID,
		SessionID:     sessionID,
		Total:         toDecimal(req.Total),
		PaymentMethod: cashier.PaymentMethod(req.PaymentMethod),
		ActorID:       actorID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, RecordSaleResponse{
		SaleID:      result.SaleID.String(),
		CompletedAt: result.CompletedAt,
	})
}

// RecordMovement godoc
// @Summary      Record a manual cash movement
// @Description  Record a cash in/out movement against an open session
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body RecordMovementRequest true "Movement record request"
// @Success      201 {object} dto.Response{data=RecordMovementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-sessions/{id}/movements [post]
func (h *CashierHandler) RecordMovement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actorID, _ := getUserID(c)

	result, err := h.sessionService.RecordMovement(c.Request.Context(), cashierapp.RecordMovementInput{
		TenantID:  tenantID,
		SessionID: sessionID,
		Kind:      cashier.MovementKind(req.Kind),
		Amount:    toDecimal(req.Amount),
		Reason:    req.Reason,
		ActorID:   actorID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, RecordMovementResponse{
		MovementID: result.MovementID.String(),
	})
}

// CloseSession godoc
// @Summary      Close a cash session
// @Description  Close the session, reconciling counted cash against the recomputed expected amount
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body CloseSessionRequest true "Session close request"
// @Success      200 {object} dto.Response{data=CloseSessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-sessions/{id}/close [post]
func (h *CashierHandler) CloseSession(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actorID, _ := getUserID(c)

	result, err := h.sessionService.Close(c.Request.Context(), cashierapp.CloseSessionInput{
		TenantID:      tenantID,
		SessionID:     sessionID,
		CountedAmount: toDecimal(*req.CountedAmount),
		Notes:         req.Notes,
		ActorID:       actorID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CloseSessionResponse{
		SessionID: result.SessionID.String(),
		Expected:  result.Expected.InexactFloat64(),
		Counted:   result.Counted.InexactFloat64(),
		Variance:  result.Variance.InexactFloat64(),
		Breakdown: result.Breakdown,
		ClosedAt:  result.ClosedAt,
	})
}

// SuspendSale godoc
// @Summary      Suspend a sale in progress
// @Description  Park an in-progress cart against an open session for later resumption
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body SuspendSaleRequest true "Cart suspension request"
// @Success      201 {object} dto.Response{data=SuspendSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-sessions/{id}/suspended-sales [post]
func (h *CashierHandler) SuspendSale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	operatorID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	var req SuspendSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.sessionService.SuspendSale(c.Request.Context(), cashierapp.SuspendSaleInput{
		TenantID:    tenantID,
		SessionID:   sessionID,
		OperatorID:  operatorID,
		Label:       req.Label,
		CartPayload: req.CartPayload,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, SuspendSaleResponse{
		SuspendedSaleID: result.SuspendedSaleID.String(),
		SuspendedAt:     result.SuspendedAt,
	})
}

// ResumeSuspendedSale godoc
// @Summary      Resume a suspended sale
// @Description  Remove a parked cart from the holding area and return its payload
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Session ID" format(uuid)
// @Param        suspendedId path string true "Suspended Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=SuspendedSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-sessions/{id}/suspended-sales/{suspendedId} [delete]
func (h *CashierHandler) ResumeSuspendedSale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	suspendedID, err := uuid.Parse(c.Param("suspendedId"))
	if err != nil {
		h.BadRequest(c, "Invalid suspended sale ID format")
		return
	}

	suspended, err := h.sessionService.ResumeSuspendedSale(c.Request.Context(), tenantID, suspendedID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, SuspendedSaleResponse{
		ID:          suspended.ID.String(),
		SessionID:   suspended.SessionID.String(),
		OperatorID:  suspended.OperatorID.String(),
		Label:       suspended.Label,
		CartPayload: suspended.CartPayload,
		SuspendedAt: suspended.SuspendedAt,
	})
}

// CancelSale godoc
// @Summary      Cancel a completed sale
// @Description  Reverse a completed sale within the allowed window, posting a compensating cash-out movement
// @Tags         cashier
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body CancelSaleRequest true "Cancellation request"
// @Success      200 {object} dto.Response{data=CancelSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/cancel [post]
func (h *CashierHandler) CancelSale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req CancelSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	operatorID, _ := getUserID(c)

	result, err := h.reversalService.Cancel(c.Request.Context(), cashierapp.CancelSaleInput{
		TenantID:      tenantID,
		SaleID:        saleID,
		Justification: req.Justification,
		OperatorID:    operatorID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CancelSaleResponse{
		SaleID:      result.SaleID.String(),
		MovementID:  result.MovementID.String(),
		CancelledAt: result.CancelledAt,
	})
}
