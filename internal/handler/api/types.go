package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rowanholt/vesta/internal/domain"
)

// Money is rendered with two decimal places as a JSON string.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type cartItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Size        string `json:"size"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int32  `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

type appliedCouponResponse struct {
	Code           string `json:"code"`
	DiscountType   string `json:"discountType"`
	DiscountValue  string `json:"discountValue"`
	DiscountAmount string `json:"discountAmount"`
	Description    string `json:"description,omitempty"`
}

type cartResponse struct {
	ID                  string                 `json:"id"`
	Items               []cartItemResponse     `json:"items"`
	ItemCount           int                    `json:"itemCount"`
	Subtotal            string                 `json:"subtotal"`
	Shipping            string                 `json:"shipping"`
	Discount            string                 `json:"discount"`
	Total               string                 `json:"total"`
	Coupon              *appliedCouponResponse `json:"coupon,omitempty"`
	CouponRemoved       bool                   `json:"couponRemoved,omitempty"`
	CouponRemovedReason string                 `json:"couponRemovedReason,omitempty"`
}

func newCartResponse(summary *domain.CartSummary) cartResponse {
	resp := cartResponse{
		ID:                  summary.Cart.ID.String(),
		Items:               make([]cartItemResponse, len(summary.Items)),
		ItemCount:           summary.ItemCount,
		Subtotal:            money(summary.Subtotal),
		Shipping:            money(summary.Shipping),
		Discount:            money(summary.Discount),
		Total:               money(summary.Total),
		CouponRemoved:       summary.CouponRemoved,
		CouponRemovedReason: summary.CouponRemovedReason,
	}

	for i, item := range summary.Items {
		resp.Items[i] = cartItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Size:        item.Size,
			UnitPrice:   money(item.UnitPrice),
			Quantity:    item.Quantity,
			LineTotal:   money(item.LineTotal),
		}
	}

	if summary.Coupon != nil {
		c := newAppliedCouponResponse(summary.Coupon)
		resp.Coupon = &c
	}

	return resp
}

func newAppliedCouponResponse(coupon *domain.AppliedCoupon) appliedCouponResponse {
	return appliedCouponResponse{
		Code:           coupon.Code,
		DiscountType:   string(coupon.Type),
		DiscountValue:  money(coupon.Value),
		DiscountAmount: money(coupon.DiscountAmount),
		Description:    coupon.Description,
	}
}

type orderItemResponse struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Size        string `json:"size"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int32  `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

type orderResponse struct {
	ID                string              `json:"id"`
	OrderNumber       string              `json:"orderNumber"`
	Items             []orderItemResponse `json:"items,omitempty"`
	ShippingAddress   domain.Address      `json:"shippingAddress"`
	BillingAddress    domain.Address      `json:"billingAddress"`
	Subtotal          string              `json:"subtotal"`
	Shipping          string              `json:"shipping"`
	Discount          string              `json:"discount"`
	Total             string              `json:"total"`
	CouponCode        *string             `json:"couponCode,omitempty"`
	PaymentMethod     string              `json:"paymentMethod"`
	OrderStatus       string              `json:"orderStatus"`
	PaymentStatus     string              `json:"paymentStatus"`
	FulfillmentStatus string              `json:"fulfillmentStatus"`
	ShippingMethod    string              `json:"shippingMethod,omitempty"`
	TrackingNumber    string              `json:"trackingNumber,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

func newOrderResponse(order *domain.Order) orderResponse {
	resp := orderResponse{
		ID:                order.ID.String(),
		OrderNumber:       order.OrderNumber,
		Items:             make([]orderItemResponse, len(order.Items)),
		ShippingAddress:   order.ShippingAddress,
		BillingAddress:    order.BillingAddress,
		Subtotal:          money(order.Subtotal),
		Shipping:          money(order.Shipping),
		Discount:          money(order.Discount),
		Total:             money(order.Total),
		CouponCode:        order.CouponCode,
		PaymentMethod:     string(order.PaymentMethod),
		OrderStatus:       order.OrderStatus.String(),
		PaymentStatus:     order.PaymentStatus.String(),
		FulfillmentStatus: order.FulfillmentStatus.String(),
		ShippingMethod:    order.ShippingMethod,
		TrackingNumber:    order.TrackingNumber,
		Notes:             order.Notes,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}

	for i, item := range order.Items {
		resp.Items[i] = orderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Size:        item.Size,
			UnitPrice:   money(item.UnitPrice),
			Quantity:    item.Quantity,
			LineTotal:   money(item.LineTotal),
		}
	}

	return resp
}

type statsResponse struct {
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	TotalRevenue      string    `json:"totalRevenue"`
	OrderCount        int64     `json:"orderCount"`
	AverageOrderValue string    `json:"averageOrderValue"`
	GrowthPct         string    `json:"growthPct"`
}

func newStatsResponse(report *domain.StatsReport) statsResponse {
	return statsResponse{
		Start:             report.Start,
		End:               report.End,
		TotalRevenue:      money(report.TotalRevenue),
		OrderCount:        report.OrderCount,
		AverageOrderValue: money(report.AverageOrderValue),
		GrowthPct:         money(report.GrowthPct),
	}
}
