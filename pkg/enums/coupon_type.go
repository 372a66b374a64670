package enums

// CouponType distinguishes how a coupon's discount value is interpreted.
type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFixed      CouponType = "fixed"
)

func (c CouponType) IsValid() bool {
	switch c {
	case CouponTypePercentage, CouponTypeFixed:
		return true
	}
	return false
}
