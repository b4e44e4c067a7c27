package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/metrics"
	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/mykafka"
	"github.com/Skotchmaster/markethub/internal/notify"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/settings"
	"github.com/Skotchmaster/markethub/internal/util"
)

// ReferralService mints a voucher for a referrer each time their live
// referral count lands on a multiple of REFERRAL_COUNT.
//
// The count is recomputed from the users table on every call, so changing
// REFERRAL_COUNT after the fact can skip or repeat a threshold.
type ReferralService struct {
	Users    repo.UserRepo
	Vouchers repo.VoucherRepo
	Settings *settings.Registry
	Notifier notify.Notifier
	Events   *mykafka.Emitter
	Now      func() time.Time
}

func NewReferralService(store repo.Store, reg *settings.Registry, n notify.Notifier, ev *mykafka.Emitter) *ReferralService {
	if n == nil {
		n = notify.Nop{}
	}
	return &ReferralService{
		Users:    store,
		Vouchers: store,
		Settings: reg,
		Notifier: n,
		Events:   ev,
		Now:      time.Now,
	}
}

// Reward returns the minted voucher, or nil when the referrer did not reach
// a threshold.
func (s *ReferralService) Reward(ctx context.Context, referrerID uint) (*models.Voucher, error) {
	l := logging.FromContext(ctx).With("svc", "referral.reward", "referrer_id", referrerID)

	policy, ok, err := s.Settings.ReferralPolicy(ctx)
	if err != nil {
		return nil, fmt.Errorf("read referral policy: %w", err)
	}
	if !ok {
		l.Info("referral_reward_skipped", "reason", "referral settings missing or invalid")
		return nil, nil
	}

	count, err := s.Users.CountReferrals(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("count referrals: %w", err)
	}
	if count == 0 || count%int64(policy.RequiredCount) != 0 {
		return nil, nil
	}

	code, err := util.VoucherCode()
	if err != nil {
		return nil, err
	}
	expires := s.Now().AddDate(0, 0, policy.ExpiryDays)
	v := &models.Voucher{
		UserID:    referrerID,
		Code:      code,
		Discount:  policy.VoucherAmount,
		ExpiresAt: &expires,
	}
	if err := s.Vouchers.CreateVoucher(ctx, v); err != nil {
		return nil, fmt.Errorf("create voucher: %w", err)
	}

	l.Info("referral_reward_minted", "voucher_code", v.Code, "referrals", count)
	metrics.VouchersMinted.Inc()
	s.Notifier.Notify(ctx, referrerID, notify.ReferralMessage(v.Code, v.Discount))
	s.Events.Emit(ctx, mykafka.TopicReferralEvents, referrerID, map[string]any{
		"type":        "referral_rewarded",
		"userID":      referrerID,
		"voucherCode": v.Code,
		"amount":      v.Discount,
		"referrals":   count,
	})
	return v, nil
}
