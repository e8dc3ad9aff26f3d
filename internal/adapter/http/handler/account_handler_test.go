package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/adapter/http/dto"
	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

type accountServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	updateFn     func(ctx context.Context, id string, input usecase.UpdateAccountInput) (*domain.Account, error)
	setDefaultFn func(ctx context.Context, id string) (*domain.Account, error)
	setStatusFn  func(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error)
	toggleFn     func(ctx context.Context, id string) (*domain.Account, error)
	deleteFn     func(ctx context.Context, id string) error
	getFn        func(ctx context.Context, id string) (*domain.Account, error)
	getByCodeFn  func(ctx context.Context, code string) (*domain.Account, error)
	listFn       func(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error)
	balanceFn    func(ctx context.Context, id string) (decimal.Decimal, error)
	resyncFn     func(ctx context.Context, id string) (decimal.Decimal, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) UpdateAccount(ctx context.Context, id string, input usecase.UpdateAccountInput) (*domain.Account, error) {
	return s.updateFn(ctx, id, input)
}

func (s *accountServiceStub) SetDefault(ctx context.Context, id string) (*domain.Account, error) {
	return s.setDefaultFn(ctx, id)
}

func (s *accountServiceStub) SetStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error) {
	return s.setStatusFn(ctx, id, status)
}

func (s *accountServiceStub) ToggleStatus(ctx context.Context, id string) (*domain.Account, error) {
	return s.toggleFn(ctx, id)
}

func (s *accountServiceStub) DeleteAccount(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return s.getByCodeFn(ctx, code)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	return s.listFn(ctx, filter)
}

func (s *accountServiceStub) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	return s.balanceFn(ctx, id)
}

func (s *accountServiceStub) ResyncBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	return s.resyncFn(ctx, id)
}

// withURLParams injects chi route parameters the way the router would.
func withURLParams(r *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:        "acc-1",
		Name:      "Kas Operasional",
		Code:      "KAS-001",
		Type:      domain.AccountTypeCash,
		ManagedBy: "sales",
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Name:           "Kas Operasional",
		Code:           "KAS-001",
		Type:           "cash",
		OpeningBalance: decimal.NewFromInt(100000),
		ManagedBy:      "sales",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Name != "Kas Operasional" || captured.Code != "KAS-001" || captured.Type != domain.AccountTypeCash {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_CodeTaken(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrCodeTaken
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{Name: "Kas", Code: "KAS-001", Type: "cash"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/accounts/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Delete_InUse(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			return domain.ErrAccountInUse
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/accounts/acc-1", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Delete_Success(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		deleteFn: func(ctx context.Context, id string) error { return nil },
	})

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/accounts/acc-1", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAccountHandler_SetStatus_InvalidTransition(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		setStatusFn: func(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error) {
			return nil, domain.ErrInvalidStatus
		},
	})

	body, _ := json.Marshal(dto.SetStatusRequest{Status: "closed"})
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/accounts/acc-1/status", bytes.NewReader(body)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.SetStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_List_PassesFilter(t *testing.T) {
	var captured domain.AccountFilter
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
			captured = filter
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts?managed_by=sales&status=active&limit=5", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.ManagedBy != "sales" || captured.Status != domain.AccountStatusActive || captured.Limit != 5 {
		t.Fatalf("expected filter to match query, got %+v", captured)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected total 2, got %d", resp.Total)
	}
}

func TestAccountHandler_Balance(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		balanceFn: func(ctx context.Context, id string) (decimal.Decimal, error) {
			return decimal.NewFromInt(120000), nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccountID != "acc-1" || !resp.Balance.Equal(decimal.NewFromInt(120000)) {
		t.Fatalf("unexpected balance response: %+v", resp)
	}
}
