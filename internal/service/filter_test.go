package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowerShopCRM/models"
)

func TestMatcher_FoldsCaseAndNormalization(t *testing.T) {
	o := models.Order{
		Number:      17,
		MainProduct: models.ProductSnapshot{Name: "Crème Bouquet"},
		Sender:      models.Contact{Name: "Ольга", Phone: "+7 900"},
		CreatedAt:   t0,
	}
	for _, q := range []string{"CRÈME", "cre\u0300me", "ОЛЬГА", "17", "+7 900"} {
		match, err := newMatcher(OrderFilter{Search: q}, t0)
		require.NoError(t, err)
		assert.True(t, match(o), q)
	}
	match, err := newMatcher(OrderFilter{Search: "tulip"}, t0)
	require.NoError(t, err)
	assert.False(t, match(o))
}

func TestMatcher_DeliveryDate(t *testing.T) {
	o := models.Order{DeliveryDate: models.DeliveryDateTomorrow, CreatedAt: t0}
	nextDay := t0.Add(24 * time.Hour)

	match, err := newMatcher(OrderFilter{DeliveryDate: models.DeliveryDateToday}, nextDay)
	require.NoError(t, err)
	assert.True(t, match(o), "tomorrow at order time is today a day later")

	match, err = newMatcher(OrderFilter{DeliveryDate: models.DeliveryDateToday}, t0)
	require.NoError(t, err)
	assert.False(t, match(o))

	_, err = newMatcher(OrderFilter{DeliveryDate: "someday"}, t0)
	assert.Error(t, err)
}
