package display

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"flowerShopCRM/models"
)

func TestNew_FallsBackToEnglish(t *testing.T) {
	assert.Equal(t, language.English, New("not a locale!").Language())
	assert.Equal(t, language.English, New("").Language())
	assert.Equal(t, language.Russian, New("ru-RU").Language())
}

func TestEveryStatusHasPresentation(t *testing.T) {
	for _, c := range []*Catalog{New("en"), New("ru")} {
		for s := range english.orders {
			p := c.Order(s)
			assert.NotEmpty(t, p.Label, "%s/%s", c.Language(), s)
			assert.NotEmpty(t, p.StyleTag, "%s/%s", c.Language(), s)
			if s == models.OrderStatusCompleted {
				assert.Empty(t, p.Action)
			} else {
				assert.NotEmpty(t, p.Action)
			}
		}
		for s := range english.audits {
			assert.NotEmpty(t, c.Audit(s).Label)
		}
	}
}

func TestOrder_Unknown(t *testing.T) {
	p := Default().Order("lost")
	assert.Equal(t, Presentation{Label: "lost"}, p)
}

func TestStatusChanged(t *testing.T) {
	assert.Equal(t, "Status changed to In transit", Default().StatusChanged(models.OrderStatusInTransit))
	assert.Equal(t, "Статус изменён: Оплачен", New("ru").StatusChanged(models.OrderStatusPaid))
}

func TestDifference(t *testing.T) {
	assert.Equal(t, "+8", Difference(8))
	assert.Equal(t, "-5", Difference(-5))
	assert.Equal(t, "0", Difference(0))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "12.50", Money(decimal.RequireFromString("12.5")))
}
