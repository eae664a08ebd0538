package proximity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/flash-coupon-service/internal/geo"
	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

var store = models.Location{Lat: 35.6812, Lng: 139.7671}

// north returns a point meters due north of store.
func north(meters float64) models.Location {
	return models.Location{Lat: store.Lat + meters/geo.EarthRadiusMeters*180/math.Pi, Lng: store.Lng}
}

func TestCanRedeemInclusiveBoundary(t *testing.T) {
	user := north(50)
	d := geo.Distance(user, store)
	assert.True(t, CanRedeem(user, store, d))
	assert.False(t, CanRedeem(user, store, d-0.001))
}

func TestGateViewVersusRedeem(t *testing.T) {
	g := NewGate(20, 1000)
	user := north(300)
	assert.True(t, g.CanView(user, store))
	assert.False(t, g.CanRedeem(user, store))

	near := north(15)
	assert.True(t, g.CanRedeem(near, store))
}

func TestCheckRedeemReportsShortfall(t *testing.T) {
	g := NewGate(20, 1000)
	err := g.CheckRedeem(north(300), store)
	var tooFar *models.TooFarError
	require.True(t, errors.As(err, &tooFar))
	assert.InDelta(t, 280, tooFar.Required, 0.5)
	assert.Equal(t, 20.0, tooFar.Threshold)

	assert.NoError(t, g.CheckRedeem(north(10), store))
}

func TestNewGateDefaults(t *testing.T) {
	g := NewGate(0, -1)
	assert.Equal(t, DefaultRedeemRadiusMeters, g.RedeemRadius)
	assert.Equal(t, DefaultViewRadiusMeters, g.ViewRadius)
}
