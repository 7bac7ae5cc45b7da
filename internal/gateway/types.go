package gateway

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// FlexString accepts a JSON string or number. Receipt and reference ids arrive
// in either form depending on the source.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// RawRecord is a record as the remote source returns it.
type RawRecord struct {
	ReceiptID   FlexString `json:"receipt_id"`
	Date        string     `json:"date"`
	SellerID    FlexString `json:"seller_id"`
	CustomerID  FlexString `json:"customer_id"`
	TotalAmount float64    `json:"total_amount"`
}

// RawPage is the remote response for a records query.
type RawPage struct {
	Total int         `json:"total"`
	Items []RawRecord `json:"items"`
}

// Record is a denormalized record ready for rendering.
type Record struct {
	ID       string  `json:"id"       yaml:"id"`
	Date     string  `json:"date"     yaml:"date"`
	Seller   string  `json:"seller"   yaml:"seller"`
	Customer string  `json:"customer" yaml:"customer"`
	Total    float64 `json:"total"    yaml:"total"`
}

// Page is one fetched page of denormalized records.
type Page struct {
	Total int      `json:"total" yaml:"total"`
	Items []Record `json:"items" yaml:"items"`
}

func (p Page) clone() Page {
	items := make([]Record, len(p.Items))
	copy(items, p.Items)
	return Page{Total: p.Total, Items: items}
}

// Index maps an id to its display name. Treat it as read-only once loaded.
type Index map[string]string

// Name resolves id, returning id itself when the table has no entry.
func (ix Index) Name(id string) string {
	if name, ok := ix[id]; ok {
		return name
	}
	return id
}

// Names returns the display names sorted alphabetically, for filter choices.
func (ix Index) Names() []string {
	names := make([]string, 0, len(ix))
	for _, n := range ix {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IDs returns the ids in ascending numeric order when they are numeric,
// lexical order otherwise.
func (ix Index) IDs() []string {
	ids := make([]string, 0, len(ix))
	for id := range ix {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Indexes holds the session-lifetime lookup tables.
type Indexes struct {
	Sellers   Index `json:"sellers"   yaml:"sellers"`
	Customers Index `json:"customers" yaml:"customers"`
}

// Denormalize maps raw records to display records through the index tables.
// Ids missing from a table pass through unchanged.
func (ix Indexes) Denormalize(raw []RawRecord) []Record {
	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		out = append(out, Record{
			ID:       r.ReceiptID.String(),
			Date:     r.Date,
			Seller:   ix.Sellers.Name(r.SellerID.String()),
			Customer: ix.Customers.Name(r.CustomerID.String()),
			Total:    r.TotalAmount,
		})
	}
	return out
}
