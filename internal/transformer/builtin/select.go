package builtin

import (
	"dataco/internal/frame"
)

// KeepColumns is the ordered allow-list of columns in the cleaned dataset.
var KeepColumns = []string{
	"Order_Id",
	"order_date_DateOrders",
	"Market",
	"Order_Region",
	"Order_Country",
	"Order_City",
	"Customer_Segment",
	"Category_Name",
	"Product_Name",
	"Sales",
	"Benefit_per_order",
	"profit_margin",
	"Order_Item_Discount",
	"Order_Item_Discount_Rate",
	"Order_Item_Quantity",
	"Shipping_Mode",
	"Delivery_Status",
	"Late_delivery_risk",
	"Days_for_shipping_real",
	"Days_for_shipment_scheduled",
	"delivery_delay_days",
	"late_delivery_flag",
	"loss_making_order_flag",
	"Type",
}

// Select restricts the frame to the allow-list columns that are present,
// in allow-list order. Columns missing upstream are skipped silently and
// reported through Missing.
type Select struct {
	Columns []string
}

func (Select) Name() string { return "select" }

func (s Select) Apply(f *frame.Frame) (*frame.Frame, error) {
	return f.Select(Present(s.columns(), f))
}

// Missing lists allow-list columns absent from f.
func (s Select) Missing(f *frame.Frame) []string {
	var out []string
	for _, c := range s.columns() {
		if !f.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s Select) columns() []string {
	if len(s.Columns) == 0 {
		return KeepColumns
	}
	return s.Columns
}

// Present returns the names in want that exist in f, preserving want's order.
func Present(want []string, f *frame.Frame) []string {
	out := make([]string, 0, len(want))
	for _, c := range want {
		if f.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
