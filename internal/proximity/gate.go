// Package proximity decides whether a user is close enough to a store to
// view or redeem its coupons.
package proximity

import (
	"github.com/Cheertaboi/flash-coupon-service/internal/geo"
	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

const (
	DefaultRedeemRadiusMeters = 20.0
	DefaultViewRadiusMeters   = 1000.0
)

// CanRedeem reports whether user is within thresholdMeters of coupon, inclusive.
func CanRedeem(user, coupon models.Location, thresholdMeters float64) bool {
	return geo.Distance(user, coupon) <= thresholdMeters
}

// Gate carries the two distance policies: a strict one for redeeming and a
// loose one for viewing.
type Gate struct {
	RedeemRadius float64
	ViewRadius   float64
}

func NewGate(redeemRadius, viewRadius float64) Gate {
	if redeemRadius <= 0 {
		redeemRadius = DefaultRedeemRadiusMeters
	}
	if viewRadius <= 0 {
		viewRadius = DefaultViewRadiusMeters
	}
	return Gate{RedeemRadius: redeemRadius, ViewRadius: viewRadius}
}

func (g Gate) CanView(user, coupon models.Location) bool {
	return CanRedeem(user, coupon, g.ViewRadius)
}

func (g Gate) CanRedeem(user, coupon models.Location) bool {
	return CanRedeem(user, coupon, g.RedeemRadius)
}

// CheckRedeem returns a *models.TooFarError when the user is outside the
// redeem radius.
func (g Gate) CheckRedeem(user, coupon models.Location) error {
	d := geo.Distance(user, coupon)
	if d <= g.RedeemRadius {
		return nil
	}
	return &models.TooFarError{Distance: d, Threshold: g.RedeemRadius, Required: d - g.RedeemRadius}
}
