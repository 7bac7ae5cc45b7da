package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rshade/recordview/internal/gateway"
	"github.com/rshade/recordview/internal/pagination"
	"github.com/rshade/recordview/internal/query"
)

// sortColumns maps sortable API fields to SQL columns.
//
//nolint:gochecknoglobals // Lookup table.
var sortColumns = map[string]string{
	"date":  "r.date",
	"total": "r.total_amount",
}

// RecordQuery selects one page of receipts. Zero values mean "no constraint".
type RecordQuery struct {
	Limit     int
	Page      int
	Date      string
	Seller    string
	Customer  string
	TotalFrom *float64
	TotalTo   *float64
	Search    string
	SortField string
	SortDir   query.Direction
}

// Records returns the matching row count and the requested page.
func (s *Store) Records(ctx context.Context, q RecordQuery) (gateway.RawPage, error) {
	where, args := q.where()

	var total int
	countStmt := `SELECT COUNT(*) FROM receipts r
		JOIN sellers s ON s.id = r.seller_id
		JOIN customers c ON c.id = r.customer_id` + where
	if err := s.db.QueryRowContext(ctx, countStmt, args...).Scan(&total); err != nil {
		return gateway.RawPage{}, fmt.Errorf("counting records: %w", err)
	}

	limit := q.Limit
	if limit < pagination.MinPageSize {
		limit = pagination.DefaultPageSize
	}
	page := max(q.Page, pagination.MinPage)

	stmt := `SELECT r.id, r.date, r.seller_id, r.customer_id, r.total_amount FROM receipts r
		JOIN sellers s ON s.id = r.seller_id
		JOIN customers c ON c.id = r.customer_id` + where + q.orderBy() + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, stmt, append(args, limit, pagination.Offset(page, limit))...)
	if err != nil {
		return gateway.RawPage{}, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	items := make([]gateway.RawRecord, 0, limit)
	for rows.Next() {
		var (
			id, sellerID, customerID int64
			date                     string
			amount                   float64
		)
		if err = rows.Scan(&id, &date, &sellerID, &customerID, &amount); err != nil {
			return gateway.RawPage{}, fmt.Errorf("scanning record: %w", err)
		}
		items = append(items, gateway.RawRecord{
			ReceiptID:   gateway.FlexString(strconv.FormatInt(id, 10)),
			Date:        date,
			SellerID:    gateway.FlexString(strconv.FormatInt(sellerID, 10)),
			CustomerID:  gateway.FlexString(strconv.FormatInt(customerID, 10)),
			TotalAmount: amount,
		})
	}
	if err = rows.Err(); err != nil {
		return gateway.RawPage{}, fmt.Errorf("reading records: %w", err)
	}

	return gateway.RawPage{Total: total, Items: items}, nil
}

func (q RecordQuery) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Date != "" {
		conds = append(conds, "r.date = ?")
		args = append(args, q.Date)
	}
	if q.Seller != "" {
		conds = append(conds, "s.name = ?")
		args = append(args, q.Seller)
	}
	if q.Customer != "" {
		conds = append(conds, "c.name = ?")
		args = append(args, q.Customer)
	}
	if q.TotalFrom != nil {
		conds = append(conds, "r.total_amount >= ?")
		args = append(args, *q.TotalFrom)
	}
	if q.TotalTo != nil {
		conds = append(conds, "r.total_amount <= ?")
		args = append(args, *q.TotalTo)
	}
	if q.Search != "" {
		like := "%" + escapeLike(q.Search) + "%"
		conds = append(conds, `(r.date LIKE ? ESCAPE '\' OR s.name LIKE ? ESCAPE '\' OR c.name LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (q RecordQuery) orderBy() string {
	col, ok := sortColumns[q.SortField]
	if !ok || q.SortDir == query.DirectionNone {
		return " ORDER BY r.id"
	}
	dir := "ASC"
	if q.SortDir == query.DirectionDesc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", r.id"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
