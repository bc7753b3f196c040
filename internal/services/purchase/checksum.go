package purchase

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/mcoot/gamestore/internal/model"
)

// The payment service signs both legs of the handshake with MD5 over a query-like string.

// PaymentChecksum signs an outgoing payment request
func PaymentChecksum(pid model.OrderID, sid string, amount model.Price, secret string) string {
	return md5Hex(fmt.Sprintf("pid=%d&sid=%s&amount=%s&token=%s", pid, sid, amount, secret))
}

// ResultChecksum signs a payment callback. pid is taken verbatim from the callback.
func ResultChecksum(pid, ref, result, secret string) string {
	return md5Hex(fmt.Sprintf("pid=%s&ref=%s&result=%s&token=%s", pid, ref, result, secret))
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func checksumEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
