package service

import (
	"context"
	"testing"

	"ai-marketplace-be/internal/dto"
	"ai-marketplace-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

func TestShowUnknownProductMessage(t *testing.T) {
	uow := newFakeUow()
	svc := NewProductService(&fakeUowFactory{uow: uow}, nil, nil)

	_, err := svc.Show(context.Background(), uuid.New())
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	if got := err.Error(); got != "product not found" {
		t.Errorf("error message = %q, want %q", got, "product not found")
	}
}

func TestUpdateUnknownProductMessage(t *testing.T) {
	uow := newFakeUow()
	svc := NewProductService(&fakeUowFactory{uow: uow}, nil, nil)

	_, err := svc.Update(context.Background(), &dto.UpdateProductRequest{Id: uuid.New()})
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	if got := err.Error(); got != "product not found" {
		t.Errorf("error message = %q, want %q", got, "product not found")
	}
}

func TestDeleteUnknownProductMessage(t *testing.T) {
	uow := newFakeUow()
	svc := NewProductService(&fakeUowFactory{uow: uow}, nil, nil)

	err := svc.Delete(context.Background(), uuid.New())
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}
