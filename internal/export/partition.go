package export

import (
	"strings"

	"github.com/finops-dwh/o2c/internal/transform"
	"github.com/finops-dwh/o2c/internal/warehouse"
)

// Provider is one export partition.
type Provider string

const (
	Braintree Provider = "Braintree"
	PayPal    Provider = "PayPal"
	Uber      Provider = "Uber"
	Deliveroo Provider = "Deliveroo"
	JustEat   Provider = "Just Eat"
	Amazon    Provider = "Amazon"
)

// Providers fixes the partition evaluation and export order.
var Providers = []Provider{Braintree, PayPal, Uber, Deliveroo, JustEat, Amazon}

const (
	vendorGroupColumn   = "vendor_group"
	paymentSystemColumn = "payment_system"
	orderVendorColumn   = "order_vendor"
)

// Partition splits rows into provider buckets. The six routing rules are
// evaluated independently per row on lowercased field values; rows matching
// no rule are dropped. Every provider gets a bucket, possibly empty, sharing
// the input's columns.
func Partition(rs *warehouse.Rowset) (map[Provider]*warehouse.Rowset, error) {
	idx, err := routingIndexes(rs)
	if err != nil {
		return nil, err
	}

	buckets := make(map[Provider]*warehouse.Rowset, len(Providers))
	for _, p := range Providers {
		buckets[p] = &warehouse.Rowset{Columns: rs.Columns}
	}

	for _, row := range rs.Rows {
		vendorGroup := lowerCell(row[idx.vendorGroup])
		paymentSystem := lowerCell(row[idx.paymentSystem])
		orderVendor := lowerCell(row[idx.orderVendor])

		for _, p := range Providers {
			if matches(p, vendorGroup, paymentSystem, orderVendor) {
				bucket := buckets[p]
				bucket.Rows = append(bucket.Rows, row)
			}
		}
	}
	return buckets, nil
}

// matches implements the routing rules on already-lowercased fields.
func matches(p Provider, vendorGroup, paymentSystem, orderVendor string) bool {
	switch p {
	case Braintree:
		return vendorGroup == "dtc" && paymentSystem != "paypal"
	case PayPal:
		return vendorGroup == "dtc" && paymentSystem == "paypal"
	case Uber:
		return orderVendor == "uber"
	case Deliveroo:
		return orderVendor == "deliveroo"
	case JustEat:
		return orderVendor == "just eat" || orderVendor == "justeat"
	case Amazon:
		return orderVendor == "amazon uk"
	}
	return false
}

type routing struct {
	vendorGroup   int
	paymentSystem int
	orderVendor   int
}

func routingIndexes(rs *warehouse.Rowset) (routing, error) {
	var idx routing
	var missing []string
	var ok bool

	if idx.vendorGroup, ok = rs.ColumnIndex(vendorGroupColumn); !ok {
		missing = append(missing, vendorGroupColumn)
	}
	if idx.paymentSystem, ok = rs.ColumnIndex(paymentSystemColumn); !ok {
		missing = append(missing, paymentSystemColumn)
	}
	if idx.orderVendor, ok = rs.ColumnIndex(orderVendorColumn); !ok {
		missing = append(missing, orderVendorColumn)
	}
	if len(missing) > 0 {
		return routing{}, &transform.SchemaError{Missing: missing}
	}
	return idx, nil
}

// lowerCell folds a routing cell to lowercase; missing values compare as "".
func lowerCell(v any) string {
	switch t := v.(type) {
	case string:
		return strings.ToLower(t)
	case []byte:
		return strings.ToLower(string(t))
	default:
		return ""
	}
}
