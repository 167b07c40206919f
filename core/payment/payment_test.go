package payment

import "testing"

func TestVerifySignature(t *testing.T) {
	const (
		orderID   = "order_MkWd9jH2qR"
		paymentID = "pay_NcXe8iG1pQ"
		secret    = "shared-key-secret"
	)

	sig := Signature(orderID, paymentID, secret)
	if sig == "" {
		t.Fatal("signature is empty")
	}

	if !VerifySignature(orderID, paymentID, secret, sig) {
		t.Fatal("genuine signature rejected")
	}

	cases := map[string]struct {
		orderID   string
		paymentID string
		secret    string
		got       string
	}{
		"tampered signature":  {orderID, paymentID, secret, sig[:len(sig)-1] + "0"},
		"wrong secret":        {orderID, paymentID, "other-secret", sig},
		"swapped order id":    {"order_other", paymentID, secret, sig},
		"swapped payment id":  {orderID, "pay_other", secret, sig},
		"empty signature":     {orderID, paymentID, secret, ""},
		"truncated signature": {orderID, paymentID, secret, sig[:10]},
	}

	for name, c := range cases {
		if VerifySignature(c.orderID, c.paymentID, c.secret, c.got) {
			t.Errorf("%s: forged confirmation accepted", name)
		}
	}
}

func TestSignatureMessageShape(t *testing.T) {
	// The signed message is "orderID|paymentID"; shifting the separator
	// must change the signature.
	a := Signature("order_1", "2pay", "s")
	b := Signature("order_12", "pay", "s")
	if a == b {
		t.Fatal("signature does not separate order id from payment id")
	}
}
