package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/albisri/kasledger/internal/adapter/http/dto"
	"github.com/albisri/kasledger/internal/domain"
	"github.com/albisri/kasledger/internal/usecase"
)

type transferServiceStub struct {
	transferFn func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
}

func (s *transferServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
	return s.transferFn(ctx, input)
}

func TestTransferHandler_Create_Success(t *testing.T) {
	result := &usecase.TransferResult{
		Reference: "TRF-01HXYZ",
		OutEntry:  &domain.Entry{ID: "entry-out", Direction: domain.DirectionOut},
		InEntry:   &domain.Entry{ID: "entry-in", Direction: domain.DirectionIn},
	}

	var captured usecase.TransferInput
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
			captured = input
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.TransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(50000),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	req.Header.Set("X-Actor", "bendahara")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.FromAccountID != "acc-1" || captured.ToAccountID != "acc-2" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if captured.CreatedBy != "bendahara" {
		t.Fatalf("expected actor header to flow into input, got %q", captured.CreatedBy)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Reference != "TRF-01HXYZ" || resp.OutEntry.ID != "entry-out" || resp.InEntry.ID != "entry-in" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransferHandler_Create_InvalidBody(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
			t.Fatal("Transfer should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_InsufficientFunds(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
			return nil, domain.ErrInsufficientFunds
		},
	})

	body, _ := json.Marshal(dto.TransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(999999),
	})
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_SameAccount(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
			return nil, domain.ErrSameAccount
		},
	})

	body, _ := json.Marshal(dto.TransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-1",
		Amount:        decimal.NewFromInt(100),
	})
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
