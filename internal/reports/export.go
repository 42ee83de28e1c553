package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// csvPrinter formats money with grouping separators for export consumers.
var csvPrinter = message.NewPrinter(language.English)

func money(v float64) string {
	return csvPrinter.Sprintf("%.2f", v)
}

// WriteRangeCSV streams a range report as CSV: a summary block, then the
// per-product and per-cashier breakdowns.
func WriteRangeCSV(w io.Writer, report *RangeReport) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"from", "to", "sales_count", "sales_total", "orders_count", "orders_total", "grand_total"},
		{
			report.From.Format("2006-01-02"),
			report.To.Format("2006-01-02"),
			strconv.Itoa(report.Summary.SalesCount),
			money(report.Summary.SalesTotal),
			strconv.Itoa(report.Summary.OrdersCount),
			money(report.Summary.OrdersTotal),
			money(report.Summary.GrandTotal),
		},
		{},
		{"product_id", "product_name", "quantity", "total"},
	}
	for _, row := range report.ByProduct {
		rows = append(rows, []string{
			strconv.FormatInt(row.ProductID, 10),
			row.ProductName,
			strconv.Itoa(row.Quantity),
			money(row.Total),
		})
	}
	rows = append(rows, []string{}, []string{"cashier_id", "cashier_name", "count", "total"})
	for _, row := range report.ByCashier {
		rows = append(rows, []string{
			strconv.FormatInt(row.CashierID, 10),
			row.CashierName,
			strconv.Itoa(row.Count),
			money(row.Total),
		})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
