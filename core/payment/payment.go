package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Subscription statuses mirrored onto the user record. "created" comes
// straight from the gateway order; "active" is set only after the
// signature check passes.
const (
	StatusCreated = "created"
	StatusActive  = "active"
)

// Payment is the immutable audit record of a verified payment. It is
// written only after the signature has been verified, never before.
type Payment struct {
	PaymentID string    `json:"razorpay_payment_id" db:"payment_id"`
	OrderID   string    `json:"razorpay_order_id" db:"order_id"`
	Signature string    `json:"razorpay_signature" db:"signature"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type OrderNew struct {
	CourseID    string `json:"courseId" validate:"required"`
	CoursePrice int    `json:"coursePrice" validate:"required,gt=0"`
}

type Verification struct {
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
}

// Signature computes the gateway's confirmation signature: HMAC-SHA256
// over "orderID|paymentID" with the shared key secret, hex encoded.
func Signature(orderID string, paymentID string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature is the sole gate against forged payment confirmations.
// The comparison is constant time.
func VerifySignature(orderID string, paymentID string, secret string, got string) bool {
	want := Signature(orderID, paymentID, secret)
	return hmac.Equal([]byte(want), []byte(got))
}
