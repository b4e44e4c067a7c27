package settings

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/repo"
)

const (
	KeyReferralCount     = "REFERRAL_COUNT"
	KeyVoucherAmount     = "VOUCHER_AMOUNT"
	KeyVoucherExpiryDays = "VOUCHER_EXPIRY_DAYS"
	PaymentPrefix        = "PAYMENT_"

	DefaultVoucherExpiryDays = 30
)

// Registry reads and writes the key/value settings table. It holds no
// cached state, so every read sees the latest committed value.
type Registry struct {
	Repo repo.SettingRepo
}

func New(r repo.SettingRepo) *Registry { return &Registry{Repo: r} }

func (s *Registry) Get(ctx context.Context, key string) (*models.Setting, error) {
	return s.Repo.GetSetting(ctx, key)
}

func (s *Registry) List(ctx context.Context) ([]models.Setting, error) {
	return s.Repo.ListSettings(ctx)
}

func (s *Registry) Update(ctx context.Context, key, value string) (*models.Setting, error) {
	return s.Repo.UpdateSettingValue(ctx, key, value)
}

// PaymentEnabled reports whether PAYMENT_<METHOD> is exactly "true".
func (s *Registry) PaymentEnabled(ctx context.Context, method string) (bool, error) {
	if strings.TrimSpace(method) == "" {
		return false, nil
	}
	st, err := s.Repo.GetSetting(ctx, PaymentPrefix+strings.ToUpper(method))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return st.Value == "true", nil
}

type ReferralPolicy struct {
	RequiredCount int
	VoucherAmount float64
	ExpiryDays    int
}

// ReferralPolicy returns ok=false when the threshold or amount setting is
// missing or unusable; no reward is minted in that case.
func (s *Registry) ReferralPolicy(ctx context.Context) (ReferralPolicy, bool, error) {
	var p ReferralPolicy

	countSetting, err := s.lookup(ctx, KeyReferralCount)
	if err != nil || countSetting == nil {
		return p, false, err
	}
	amountSetting, err := s.lookup(ctx, KeyVoucherAmount)
	if err != nil || amountSetting == nil {
		return p, false, err
	}
	expirySetting, err := s.lookup(ctx, KeyVoucherExpiryDays)
	if err != nil {
		return p, false, err
	}

	required, err := strconv.Atoi(strings.TrimSpace(countSetting.Value))
	if err != nil || required < 1 {
		return p, false, nil
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(amountSetting.Value), 64)
	if err != nil {
		return p, false, nil
	}

	p.RequiredCount = required
	p.VoucherAmount = amount
	p.ExpiryDays = DefaultVoucherExpiryDays
	if expirySetting != nil {
		if days, err := strconv.Atoi(strings.TrimSpace(expirySetting.Value)); err == nil {
			p.ExpiryDays = days
		}
	}
	return p, true, nil
}

func (s *Registry) lookup(ctx context.Context, key string) (*models.Setting, error) {
	st, err := s.Repo.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// IsPublic reports whether an anonymous caller may read key.
func IsPublic(key string) bool {
	return strings.HasPrefix(key, PaymentPrefix) || key == KeyReferralCount || key == KeyVoucherAmount
}

func Public(all []models.Setting) []models.Setting {
	out := make([]models.Setting, 0, len(all))
	for _, s := range all {
		if IsPublic(s.Key) {
			out = append(out, s)
		}
	}
	return out
}
