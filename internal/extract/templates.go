package extract

import (
	_ "embed"
	"strings"

	"github.com/finops-dwh/o2c/internal/period"
)

//go:embed sql/order_level.sql
var orderLevelSQL string

//go:embed sql/item_level.sql
var itemLevelSQL string

// Placeholder tokens replaced before execution. The templates are trusted,
// version-controlled assets; substitution is plain text, never escaped.
const (
	startDateToken   = "{{start_date}}"
	endDateToken     = "{{end_date}}"
	orderIDListToken = "{{order_id_list}}"
)

// OrderLevelQuery renders the order-level statement for the period.
func OrderLevelQuery(p period.Period) string {
	q := strings.ReplaceAll(orderLevelSQL, startDateToken, p.Start)
	return strings.ReplaceAll(q, endDateToken, p.End)
}

// ItemLevelQuery renders the item-level statement, scoped to the ids staged
// in the session temp table.
func ItemLevelQuery() string {
	return strings.ReplaceAll(itemLevelSQL, orderIDListToken, orderIDSubquery)
}
