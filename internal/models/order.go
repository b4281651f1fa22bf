package models

import (
	"time"

	"github.com/lib/pq"
)

// OrderMode is the recipient mode an order was composed in.
type OrderMode string

const (
	ModeSelf     OrderMode = "self"
	ModeCustomer OrderMode = "customer"
	ModeGroup    OrderMode = "group"
)

// OrderStatus tracks the fulfilment state of an order.
type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderReady      OrderStatus = "ready"
	OrderSuspended  OrderStatus = "suspended"
	OrderCancelled  OrderStatus = "cancelled"
	OrderFailed     OrderStatus = "failed"
)

// Currency is an ISO code the portal can display amounts in.
type Currency string

const (
	CurrencyUZS Currency = "UZS"
	CurrencyUSD Currency = "USD"
)

// Order is a placed order for one plan and one or more recipients.
// Amounts are integer minor units of Currency.
type Order struct {
	ID              string         `db:"id" json:"id"`
	OrderNo         string         `db:"order_no" json:"orderNo"`
	PartnerID       int            `db:"partner_id" json:"-"`
	PlanID          string         `db:"plan_id" json:"planId"`
	PackageCode     string         `db:"package_code" json:"packageCode"`
	Destination     string         `db:"destination" json:"destination"`
	Mode            OrderMode      `db:"mode" json:"mode"`
	Recipients      Members        `db:"recipients" json:"recipients"`
	GroupIDs        pq.StringArray `db:"group_ids" json:"groupIds"`
	Quantity        int            `db:"quantity" json:"quantity"`
	Currency        Currency       `db:"currency" json:"currency"`
	ExchangeRate    string         `db:"exchange_rate" json:"exchangeRate"`
	UnitPrice       int64          `db:"unit_price" json:"unitPrice"`
	PackageTotal    int64          `db:"package_total" json:"packageTotal"`
	PartnerDiscount int64          `db:"partner_discount" json:"partnerDiscount"`
	PartnerProfit   int64          `db:"partner_profit" json:"partnerProfit"`
	TotalPayment    int64          `db:"total_payment" json:"totalPayment"`
	Status          OrderStatus    `db:"status" json:"status"`
	SupplierOrderNo *string        `db:"supplier_order_no" json:"supplierOrderNo,omitempty"`
	FailedReason    *string        `db:"failed_reason" json:"failedReason,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// Profile is a single eSIM issued for an order.
type Profile struct {
	ICCID          string     `json:"iccid"`
	ActivationCode string     `json:"activationCode"`
	QRCodeURL      string     `json:"qrCodeUrl"`
	Status         string     `json:"status"`
	DataUsedBytes  int64      `json:"dataUsedBytes"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// OrderDetails is an order enriched with the supplier-side eSIM profiles.
type OrderDetails struct {
	Order
	Profiles []Profile `json:"profiles"`
}
