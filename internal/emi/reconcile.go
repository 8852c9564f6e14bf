package emi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storehub/emi-engine/internal/domain"
	apperrors "github.com/storehub/emi-engine/pkg/errors"
)

// ApplyPayment applies a payment of arbitrary amount against one installment
// and reconciles the rest of the schedule so money is conserved.
//
// A partial payment leaves the target unpaid and spreads the shortfall evenly
// across the unpaid installments after it (cent remainder lands on the last
// one); with no later unpaid installments the shortfall stays outstanding on
// the target and is reported. An overpayment settles the target and cascades
// the surplus onto the next unpaid installments in order; surplus left after
// the whole schedule is settled comes back as unapplied credit.
//
// The schedule is mutated in place, but only after all validation passes: an
// error return means the schedule is untouched.
func ApplyPayment(schedule []*domain.Installment, number int, amount decimal.Decimal, paidAt time.Time) (*domain.PaymentImpact, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.WrapInvalidPaymentAmount(amount.String())
	}

	var target *domain.Installment
	for _, inst := range schedule {
		if inst.Number == number {
			target = inst
			break
		}
	}
	if target == nil {
		return nil, apperrors.WrapInstallmentNotFound(number)
	}
	if target.Paid {
		return nil, apperrors.WrapInstallmentSettled(number)
	}

	payment := amount.Round(2)
	due := target.Outstanding()

	impact := &domain.PaymentImpact{
		InstallmentNumber: number,
		Shortfall:         decimal.Zero,
		Overpayment:       decimal.Zero,
		UnappliedCredit:   decimal.Zero,
	}

	switch payment.Round(2).Cmp(due.Round(2)) {
	case 0:
		settle(target, paidAt)
		impact.IsFullPayment = true

	case -1:
		target.PaidAmount = target.PaidAmount.Add(payment)
		target.PartiallyPaid = true

		shortfall := due.Sub(payment)
		impact.IsPartialPayment = true
		impact.Shortfall = shortfall
		redistributeShortfall(schedule, number, shortfall)

	case 1:
		surplus := payment.Sub(due)
		settle(target, paidAt)
		impact.IsOverpayment = true
		impact.Overpayment = surplus
		impact.UnappliedCredit = cascadeSurplus(schedule, number, surplus, paidAt)
	}

	return impact, nil
}

func settle(inst *domain.Installment, paidAt time.Time) {
	inst.PaidAmount = inst.Amount
	inst.Paid = true
	inst.PartiallyPaid = false
	t := paidAt
	inst.PaidDate = &t
}

// redistributeShortfall raises the amount of every unpaid installment after
// the target by an even share of the shortfall. The last receiver absorbs the
// rounding remainder so the grand total is conserved to the cent.
func redistributeShortfall(schedule []*domain.Installment, afterNumber int, shortfall decimal.Decimal) {
	var receivers []*domain.Installment
	for _, inst := range schedule {
		if inst.Number > afterNumber && !inst.Paid {
			receivers = append(receivers, inst)
		}
	}
	if len(receivers) == 0 {
		// Nothing left to absorb it; the shortfall stays outstanding on the
		// target and is reported in the impact.
		return
	}

	n := decimal.NewFromInt(int64(len(receivers)))
	share := shortfall.Div(n).Round(2)

	distributed := decimal.Zero
	for i, inst := range receivers {
		portion := share
		if i == len(receivers)-1 {
			portion = shortfall.Sub(distributed)
		}
		inst.Amount = inst.Amount.Add(portion)
		distributed = distributed.Add(portion)
	}
}

// cascadeSurplus applies surplus to the next unpaid installments in number
// order and returns whatever could not be applied.
func cascadeSurplus(schedule []*domain.Installment, afterNumber int, surplus decimal.Decimal, paidAt time.Time) decimal.Decimal {
	for _, inst := range schedule {
		if surplus.LessThanOrEqual(decimal.Zero) {
			break
		}
		if inst.Number <= afterNumber || inst.Paid {
			continue
		}

		room := inst.Outstanding()
		if surplus.GreaterThanOrEqual(room) {
			settle(inst, paidAt)
			surplus = surplus.Sub(room)
			continue
		}

		inst.PaidAmount = inst.PaidAmount.Add(surplus)
		inst.PartiallyPaid = true
		surplus = decimal.Zero
	}

	return surplus
}
