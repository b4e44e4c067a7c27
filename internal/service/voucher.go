package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/repo"
)

type VoucherService struct {
	Vouchers repo.VoucherRepo
}

func NewVoucherService(vouchers repo.VoucherRepo) *VoucherService {
	return &VoucherService{Vouchers: vouchers}
}

func (s *VoucherService) List(ctx context.Context, userID uint) ([]models.Voucher, error) {
	return s.Vouchers.ListVouchersForUser(ctx, userID)
}

// Validate looks the code up without consuming it.
func (s *VoucherService) Validate(ctx context.Context, code string) (*models.Voucher, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fail(ErrValidation, "Voucher code is required")
	}
	v, err := s.Vouchers.FindValidVoucher(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fail(ErrNotFound, "Invalid or expired voucher")
		}
		return nil, err
	}
	return v, nil
}
