package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/datamodel/payment"
)

// Verifier authenticates a webhook. rawBody must be the exact bytes received.
type Verifier interface {
	Verify(provider string, rawBody []byte, headerSignature, explicitSignature string) bool
}

// SignatureHeader returns the header that carries the provider's signature.
func SignatureHeader(provider string) string {
	if provider == payment.ProviderStripe {
		return "Stripe-Signature"
	}
	return "X-Signature"
}

var (
	timestampPattern = regexp.MustCompile(`(?:^|,)\s*(?:ts|t)=([^,]+)`)
	v1Pattern        = regexp.MustCompile(`(?:^|,)\s*v1=([^,]+)`)
)

// HMACVerifier checks HMAC-SHA256 signatures with a secret per provider.
//
// Header form is "ts=<unix>,v1=<hex>" (mercadopago) or "t=<unix>,v1=<hex>"
// (stripe) over "<ts>.<rawBody>". The explicit body field is the hex HMAC of
// "<provider>:<payment_id>:<event_type>:<status>".
type HMACVerifier struct {
	secrets       map[string]string
	tolerance     time.Duration
	allowUnsigned bool
	now           func() time.Time
}

func NewHMACVerifier(cfg internal.SecurityConfig) *HMACVerifier {
	return &HMACVerifier{
		secrets: map[string]string{
			payment.ProviderMercadoPago: cfg.MercadoPagoSecret,
			payment.ProviderStripe:      cfg.StripeSecret,
		},
		tolerance:     cfg.SignatureTolerance,
		allowUnsigned: cfg.AllowUnsignedWebhooks,
		now:           time.Now,
	}
}

func (v *HMACVerifier) Verify(provider string, rawBody []byte, headerSignature, explicitSignature string) bool {
	if headerSignature == "" && explicitSignature == "" {
		return v.allowUnsigned
	}

	secret := v.secrets[provider]
	if secret == "" {
		return v.allowUnsigned
	}

	if headerSignature != "" && v.verifyHeader(secret, rawBody, headerSignature) {
		return true
	}
	if explicitSignature != "" && v.verifyExplicit(secret, provider, rawBody, explicitSignature) {
		return true
	}
	return false
}

func (v *HMACVerifier) verifyHeader(secret string, rawBody []byte, header string) bool {
	ts, sig := parseSignatureHeader(header)
	if ts == "" || sig == "" {
		return false
	}

	if v.tolerance > 0 {
		unix, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return false
		}
		skew := v.now().Sub(time.Unix(unix, 0))
		if math.Abs(float64(skew)) > float64(v.tolerance) {
			return false
		}
	}

	signed := make([]byte, 0, len(ts)+1+len(rawBody))
	signed = append(signed, ts...)
	signed = append(signed, '.')
	signed = append(signed, rawBody...)

	return hmac.Equal([]byte(sig), []byte(computeHMAC(secret, signed)))
}

func (v *HMACVerifier) verifyExplicit(secret, provider string, rawBody []byte, signature string) bool {
	var p WebhookPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return false
	}
	manifest := provider + ":" + p.PaymentID + ":" + p.EventType + ":" + p.Status
	return hmac.Equal([]byte(signature), []byte(computeHMAC(secret, []byte(manifest))))
}

func parseSignatureHeader(header string) (ts, sig string) {
	if m := timestampPattern.FindStringSubmatch(header); len(m) > 1 {
		ts = m[1]
	}
	if m := v1Pattern.FindStringSubmatch(header); len(m) > 1 {
		sig = m[1]
	}
	return ts, sig
}

func computeHMAC(secret string, data []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SignHeader builds a header value the verifier accepts. Used by tests and
// the seed command to produce sample deliveries.
func SignHeader(provider, secret string, ts int64, rawBody []byte) string {
	tsStr := strconv.FormatInt(ts, 10)
	prefix := "ts="
	if provider == payment.ProviderStripe {
		prefix = "t="
	}
	signed := append([]byte(tsStr+"."), rawBody...)
	return prefix + tsStr + ",v1=" + computeHMAC(secret, signed)
}

func SignManifest(provider, secret, paymentID, eventType, status string) string {
	return computeHMAC(secret, []byte(provider+":"+paymentID+":"+eventType+":"+status))
}
