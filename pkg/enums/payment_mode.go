package enums

// PaymentMode is the customer's chosen settlement channel for a cart.
type PaymentMode string

const (
	PaymentModeCOD     PaymentMode = "cod"
	PaymentModeGateway PaymentMode = "gateway"
)

func (p PaymentMode) IsValid() bool {
	switch p {
	case PaymentModeCOD, PaymentModeGateway:
		return true
	}
	return false
}
