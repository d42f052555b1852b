// internal/domain/payment/service_test.go
package payment_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/pkg/testutil"
)

type paidRecorder struct {
	paid []string
}

func (n *paidRecorder) OrderCreated(*order.Order)            {}
func (n *paidRecorder) OrderCancelled(*order.Order, string)  {}
func (n *paidRecorder) OrderPaid(o *order.Order)             { n.paid = append(n.paid, o.OrderCode) }

func newPaymentFixture(t *testing.T) (*payment.Service, *order.Service, *gorm.DB, *paidRecorder) {
	db := testutil.NewDB(t)
	cfg := testutil.NewConfig(t)
	logger := testutil.NewLogger(t)

	notifier := &paidRecorder{}
	inventorySvc := inventory.NewService(db, cfg, logger)
	couponSvc := coupon.NewService(db, cfg)
	cartSvc := cart.NewService(db, nil, cfg)
	orderSvc := order.NewService(db, cfg, inventorySvc, couponSvc,
		shipping.NewCalculator(cfg), cartSvc, order.NopNotifier{}, logger)
	paymentSvc := payment.NewService(db, cfg, payment.DefaultMatcher(), notifier, logger)

	return paymentSvc, orderSvc, db, notifier
}

func placeOrder(t *testing.T, db *gorm.DB, orders *order.Service, userID uint, method string) *order.Order {
	t.Helper()

	p := &product.Product{Name: "Shirt", Slug: fmt.Sprintf("shirt-%d", userID), CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	v := &product.ProductVariant{
		ProductID: p.ID, SKU: fmt.Sprintf("SKU-%d", userID), Name: "M",
		Price: 250000, StockQty: 10, WeightGrams: 200, IsActive: true,
	}
	require.NoError(t, db.Create(v).Error)

	o, err := orders.CreateOrder(userID, &order.CheckoutRequest{
		Items:           []order.CheckoutItem{{VariantID: v.ID, Quantity: 1}},
		CustomerName:    "Nguyen Van A",
		CustomerEmail:   "a@example.com",
		ShippingAddress: "1 Tran Hung Dao",
		ShippingMethod:  shipping.MethodFlat,
		PaymentMethod:   method,
	})
	require.NoError(t, err)
	return o
}

func TestWebhookMarksOrderPaidAndProcessing(t *testing.T) {
	payments, orders, db, notifier := newPaymentFixture(t)
	o := placeOrder(t, db, orders, 1, order.PaymentMethodBankTransfer)

	result := payments.ProcessWebhook([]payment.BankTransaction{{
		Description:    "CK den " + o.OrderCode + " thanh toan don hang",
		Amount:         o.GrandTotal,
		TransactionRef: "FT20260828001",
	}})

	assert.True(t, result.Success)
	assert.Equal(t, []string{o.OrderCode}, result.Processed)

	var reloaded order.Order
	require.NoError(t, db.Preload("Payments").Preload("StatusHistory").First(&reloaded, o.ID).Error)
	assert.Equal(t, order.StatusProcessing, reloaded.Status)

	require.Len(t, reloaded.Payments, 1)
	p := reloaded.Payments[0]
	assert.Equal(t, order.PaymentStatusPaid, p.Status)
	assert.Equal(t, "FT20260828001", p.TransactionRef)
	assert.NotNil(t, p.PaidAt)

	last := reloaded.StatusHistory[len(reloaded.StatusHistory)-1]
	assert.Equal(t, "webhook", last.ChangedBy)
	assert.Equal(t, order.StatusProcessing, last.ToStatus)

	assert.Equal(t, []string{o.OrderCode}, notifier.paid)
}

func TestWebhookAcceptsOverpayment(t *testing.T) {
	payments, orders, db, _ := newPaymentFixture(t)
	o := placeOrder(t, db, orders, 1, order.PaymentMethodBankTransfer)

	result := payments.ProcessWebhook([]payment.BankTransaction{{
		Description: o.OrderCode,
		Amount:      o.GrandTotal + 50000,
	}})

	assert.True(t, result.Success)
	assert.Equal(t, order.StatusProcessing, orderStatus(t, db, o.ID))
}

func TestWebhookRejectsUnderpayment(t *testing.T) {
	payments, orders, db, notifier := newPaymentFixture(t)
	o := placeOrder(t, db, orders, 1, order.PaymentMethodBankTransfer)

	result := payments.ProcessWebhook([]payment.BankTransaction{{
		Description: o.OrderCode,
		Amount:      o.GrandTotal - 1,
	}})

	assert.False(t, result.Success)
	assert.Empty(t, result.Processed)
	assert.Equal(t, order.StatusPending, orderStatus(t, db, o.ID))

	var p order.Payment
	require.NoError(t, db.Where("order_id = ?", o.ID).First(&p).Error)
	assert.Equal(t, order.PaymentStatusPending, p.Status)

	assert.Empty(t, notifier.paid)
}

func TestWebhookIgnoresDescriptionsWithoutCode(t *testing.T) {
	payments, orders, db, _ := newPaymentFixture(t)
	o := placeOrder(t, db, orders, 1, order.PaymentMethodBankTransfer)

	result := payments.ProcessWebhook([]payment.BankTransaction{{
		Description: "chuyen tien an trua",
		Amount:      o.GrandTotal,
	}})

	assert.False(t, result.Success)
	assert.Equal(t, order.StatusPending, orderStatus(t, db, o.ID))
}

func TestWebhookBatchIsolation(t *testing.T) {
	payments, orders, db, _ := newPaymentFixture(t)
	good := placeOrder(t, db, orders, 1, order.PaymentMethodBankTransfer)
	short := placeOrder(t, db, orders, 2, order.PaymentMethodBankTransfer)

	result := payments.ProcessWebhook([]payment.BankTransaction{
		{Description: "garbage with no code", Amount: 100},
		{Description: short.OrderCode, Amount: short.GrandTotal - 5000},
		{Description: good.OrderCode, Amount: good.GrandTotal},
	})

	// one failure does not stop the rest of the batch
	assert.True(t, result.Success)
	assert.Equal(t, []string{good.OrderCode}, result.Processed)
	assert.Equal(t, order.StatusProcessing, orderStatus(t, db, good.ID))
	assert.Equal(t, order.StatusPending, orderStatus(t, db, short.ID))
}

func TestWebhookResolvesFirstReconcilableCode(t *testing.T) {
	payments, orders, db, _ := newPaymentFixture(t)
	first := placeOrder(t, db, orders, 1, order.PaymentMethodBankTransfer)
	second := placeOrder(t, db, orders, 2, order.PaymentMethodBankTransfer)

	// amount covers both; the older order wins
	amount := first.GrandTotal
	if second.GrandTotal > amount {
		amount = second.GrandTotal
	}
	result := payments.ProcessWebhook([]payment.BankTransaction{{
		Description: first.OrderCode + " " + second.OrderCode,
		Amount:      amount,
	}})

	assert.Equal(t, []string{first.OrderCode}, result.Processed)
	assert.Equal(t, order.StatusProcessing, orderStatus(t, db, first.ID))
	assert.Equal(t, order.StatusPending, orderStatus(t, db, second.ID))
}

func TestWebhookSkipsTerminalOrders(t *testing.T) {
	payments, orders, db, _ := newPaymentFixture(t)
	o := placeOrder(t, db, orders, 1, order.PaymentMethodBankTransfer)

	_, err := orders.Cancel(o.ID, 1, "no longer needed")
	require.NoError(t, err)

	result := payments.ProcessWebhook([]payment.BankTransaction{{
		Description: o.OrderCode,
		Amount:      o.GrandTotal,
	}})

	assert.False(t, result.Success)
	assert.Equal(t, order.StatusCancelled, orderStatus(t, db, o.ID))
}

func TestParseWebhookPayloadShapes(t *testing.T) {
	envelope := []byte(`{"data":[{"description":"ORD2026082800001","amount":100000}]}`)
	txns, err := payment.ParseWebhookPayload(envelope)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(100000), txns[0].Amount)

	bareArray := []byte(`[{"description":"a","amount":1},{"description":"b","amount":2}]`)
	txns, err = payment.ParseWebhookPayload(bareArray)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	single := []byte(`{"description":"ORD2026082800001","amount":100000,"transaction_ref":"FT1"}`)
	txns, err = payment.ParseWebhookPayload(single)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "FT1", txns[0].TransactionRef)

	_, err = payment.ParseWebhookPayload([]byte(`"what"`))
	assert.Error(t, err)
}

func TestMatcherFindsAndDeduplicatesCodes(t *testing.T) {
	m := payment.DefaultMatcher()

	codes := m.Match("tt ORD2026082800007 va ORD2026082800008 roi lai ORD2026082800007")
	assert.Equal(t, []string{"ORD2026082800007", "ORD2026082800008"}, codes)

	assert.Empty(t, m.Match("khong co ma nao"))
}

func orderStatus(t *testing.T, db *gorm.DB, id uint) string {
	t.Helper()
	var o order.Order
	require.NoError(t, db.First(&o, id).Error)
	return o.Status
}
