package gateway

// Razorpay webhook event names the reconciler acts on. Anything else is
// acknowledged untouched so the gateway stops retrying it.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"
)

// Event is the envelope the gateway posts. Only the entities the reconciler
// reads are modeled.
type Event struct {
	Name    string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity OrderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// PaymentEntity is the gateway's payment record. Amount is in paise; Notes
// carries the user id attached at order creation.
type PaymentEntity struct {
	ID               string            `json:"id"`
	OrderID          string            `json:"order_id"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Method           string            `json:"method"`
	Notes            map[string]string `json:"notes"`
	ErrorCode        string            `json:"error_code"`
	ErrorDescription string            `json:"error_description"`
	CreatedAt        int64             `json:"created_at"`
}

type OrderEntity struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}
