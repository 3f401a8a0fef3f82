package payment

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// The gateway dictates the digest scheme exactly:
//
//	checkout: MD5(merchant_id + order_id + amount + currency + MD5(secret))
//	notify:   MD5(merchant_id + order_id + amount + currency + status_code + MD5(secret))
//
// where both MD5 outputs are uppercase hex and amount is the value formatted
// with exactly two decimal places. Any drift in field order or number
// formatting silently invalidates every signature, so this file is the only
// place that concatenation lives.

// FormatAmount renders a minor-unit amount in the gateway's fixed two-decimal
// wire format, e.g. 250000 -> "2500.00".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// SignCheckout computes the digest for the outbound checkout redirect.
func SignCheckout(merchantID, orderID, amount, currency, secret string) string {
	return md5Upper(merchantID + orderID + amount + currency + md5Upper(secret))
}

// VerifyNotification recomputes the webhook digest and compares it to the
// received one case-insensitively. It is pure: no errors, no logging, no
// side effects on malformed input.
func VerifyNotification(merchantID, orderID, amount, currency, statusCode, secret, received string) bool {
	if received == "" {
		return false
	}
	expected := md5Upper(merchantID + orderID + amount + currency + statusCode + md5Upper(secret))
	return strings.EqualFold(expected, received)
}
