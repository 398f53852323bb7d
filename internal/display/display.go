// Package display holds the single lookup table that every renderer uses to
// turn an order or audit status into a label, a style tag and an action caption.
package display

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"flowerShopCRM/models"
)

// Presentation describes how a status is shown.
// Action is the caption of the button that moves an order out of the status.
type Presentation struct {
	Label    string `json:"label"`
	StyleTag string `json:"style_tag"`
	Action   string `json:"action,omitempty"`
}

type messages struct {
	orders        map[models.OrderStatus]Presentation
	audits        map[models.AuditStatus]Presentation
	orderCreated  string
	statusChanged string // takes the new status label
}

var english = messages{
	orders: map[models.OrderStatus]Presentation{
		models.OrderStatusNew:       {Label: "New", StyleTag: "blue", Action: "Mark paid"},
		models.OrderStatusPaid:      {Label: "Paid", StyleTag: "green", Action: "Accept"},
		models.OrderStatusAccepted:  {Label: "Accepted", StyleTag: "purple", Action: "Mark assembled"},
		models.OrderStatusAssembled: {Label: "Assembled", StyleTag: "orange", Action: "Send out"},
		models.OrderStatusInTransit: {Label: "In transit", StyleTag: "yellow", Action: "Complete"},
		models.OrderStatusCompleted: {Label: "Completed", StyleTag: "gray"},
	},
	audits: map[models.AuditStatus]Presentation{
		models.AuditStatusPending: {Label: "Not counted", StyleTag: "gray"},
		models.AuditStatusMatch:   {Label: "Match", StyleTag: "green"},
		models.AuditStatusSurplus: {Label: "Surplus", StyleTag: "blue"},
		models.AuditStatusDeficit: {Label: "Deficit", StyleTag: "red"},
	},
	orderCreated:  "Order created",
	statusChanged: "Status changed to %s",
}

var russian = messages{
	orders: map[models.OrderStatus]Presentation{
		models.OrderStatusNew:       {Label: "Новый", StyleTag: "blue", Action: "Отметить оплату"},
		models.OrderStatusPaid:      {Label: "Оплачен", StyleTag: "green", Action: "Принять"},
		models.OrderStatusAccepted:  {Label: "Принят", StyleTag: "purple", Action: "Собрать"},
		models.OrderStatusAssembled: {Label: "Собран", StyleTag: "orange", Action: "Передать в доставку"},
		models.OrderStatusInTransit: {Label: "В пути", StyleTag: "yellow", Action: "Завершить"},
		models.OrderStatusCompleted: {Label: "Выполнен", StyleTag: "gray"},
	},
	audits: map[models.AuditStatus]Presentation{
		models.AuditStatusPending: {Label: "Не проверено", StyleTag: "gray"},
		models.AuditStatusMatch:   {Label: "Совпадает", StyleTag: "green"},
		models.AuditStatusSurplus: {Label: "Излишек", StyleTag: "blue"},
		models.AuditStatusDeficit: {Label: "Недостача", StyleTag: "red"},
	},
	orderCreated:  "Заказ создан",
	statusChanged: "Статус изменён: %s",
}

var (
	supported = []language.Tag{language.English, language.Russian}
	bundles   = []messages{english, russian}
	matcher   = language.NewMatcher(supported)
)

// Catalog is the label table for one locale. The zero value is not usable;
// use New or Default.
type Catalog struct {
	tag language.Tag
	msg messages
}

// Default returns the English catalog.
func Default() *Catalog {
	return &Catalog{tag: language.English, msg: english}
}

// New returns the catalog closest to the given BCP 47 locale.
// Unparseable or unsupported locales fall back to English.
func New(locale string) *Catalog {
	tag, err := language.Parse(locale)
	if err != nil {
		return Default()
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default()
	}
	return &Catalog{tag: supported[idx], msg: bundles[idx]}
}

// Language returns the tag the catalog was resolved to.
func (c *Catalog) Language() language.Tag {
	return c.tag
}

// Order returns the presentation of an order status. Unknown statuses get
// their raw value as label and no style.
func (c *Catalog) Order(s models.OrderStatus) Presentation {
	if p, ok := c.msg.orders[s]; ok {
		return p
	}
	return Presentation{Label: string(s)}
}

// Audit returns the presentation of an audit item status.
func (c *Catalog) Audit(s models.AuditStatus) Presentation {
	if p, ok := c.msg.audits[s]; ok {
		return p
	}
	return Presentation{Label: string(s)}
}

// OrderCreated is the description of the first history entry of every order.
func (c *Catalog) OrderCreated() string {
	return c.msg.orderCreated
}

// StatusChanged is the history description for a move into s.
func (c *Catalog) StatusChanged(s models.OrderStatus) string {
	return fmt.Sprintf(c.msg.statusChanged, c.Order(s).Label)
}

// Difference renders a signed audit delta; positive values carry an explicit '+'.
func Difference(d int) string {
	if d > 0 {
		return fmt.Sprintf("+%d", d)
	}
	return fmt.Sprintf("%d", d)
}

// Money renders an amount with two decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
