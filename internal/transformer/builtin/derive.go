package builtin

import (
	"dataco/internal/frame"
)

// Source and derived column names used by Derive.
const (
	ColShippingReal      = "Days_for_shipping_real"
	ColShippingScheduled = "Days_for_shipment_scheduled"
	ColBenefit           = "Benefit_per_order"
	ColSales             = "Sales"

	ColDeliveryDelay = "delivery_delay_days"
	ColLateFlag      = "late_delivery_flag"
	ColProfitMargin  = "profit_margin"
	ColLossFlag      = "loss_making_order_flag"
)

// Derive appends the four per-record metrics:
//
//	delivery_delay_days    = real - scheduled shipping days (nil if either is nil)
//	late_delivery_flag     = 1 when delay > 0, else 0
//	profit_margin          = benefit / sales (nil when sales is 0 or nil)
//	loss_making_order_flag = 1 when benefit < 0, else 0
//
// Each value depends only on cells of the same row. Absent source columns
// behave as all-nil, and so do text cells: a shipping-days column that Coerce
// left as String yields a nil delay rather than parsing its digits.
type Derive struct{}

func (Derive) Name() string { return "derive" }

func (Derive) Apply(f *frame.Frame) (*frame.Frame, error) {
	n := f.Len()
	delay := make([]any, n)
	late := make([]any, n)
	margin := make([]any, n)
	loss := make([]any, n)

	delayType := frame.Int
	for _, c := range []string{ColShippingReal, ColShippingScheduled} {
		if i := f.Index(c); i >= 0 && f.Types[i] == frame.Float {
			delayType = frame.Float
		}
	}

	for r := 0; r < n; r++ {
		d := DeliveryDelay(f.Value(r, ColShippingReal), f.Value(r, ColShippingScheduled))
		if d != nil && delayType == frame.Int {
			delay[r] = int64(*d)
		} else if d != nil {
			delay[r] = *d
		}
		late[r] = flag(d != nil && *d > 0)

		benefit := f.Value(r, ColBenefit)
		if m := ProfitMargin(benefit, f.Value(r, ColSales)); m != nil {
			margin[r] = *m
		}
		b, ok := frame.AsFloat(benefit)
		loss[r] = flag(ok && b < 0)
	}

	for _, c := range []struct {
		name string
		typ  frame.Type
		vals []any
	}{
		{ColDeliveryDelay, delayType, delay},
		{ColLateFlag, frame.Int, late},
		{ColProfitMargin, frame.Float, margin},
		{ColLossFlag, frame.Int, loss},
	} {
		if err := f.SetColumn(c.name, c.typ, c.vals); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// DeliveryDelay returns actual - scheduled, or nil when either is missing or
// not numeric.
func DeliveryDelay(actual, scheduled any) *float64 {
	a, ok := frame.AsFloat(actual)
	if !ok {
		return nil
	}
	b, ok := frame.AsFloat(scheduled)
	if !ok {
		return nil
	}
	d := a - b
	return &d
}

// ProfitMargin returns benefit / sales, or nil when either is missing or
// sales is zero.
func ProfitMargin(benefit, sales any) *float64 {
	b, ok := frame.AsFloat(benefit)
	if !ok {
		return nil
	}
	s, ok := frame.AsFloat(sales)
	if !ok || s == 0 {
		return nil
	}
	m := b / s
	return &m
}

func flag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
