package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"futures-testnet-bot/internal/model"
)

func printOrderSummary(w io.Writer, p model.OrderParams) {
	price := "market"
	if p.Price != nil {
		price = p.Price.String()
	}

	fmt.Fprintln(w, "\nOrder Summary")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Symbol\t%s\n", p.Symbol)
	fmt.Fprintf(tw, "  Side\t%s\n", p.Side)
	fmt.Fprintf(tw, "  Type\t%s\n", p.Type)
	fmt.Fprintf(tw, "  Quantity\t%s\n", p.Quantity.String())
	fmt.Fprintf(tw, "  Price\t%s\n", price)
	tw.Flush()
	fmt.Fprintln(w)
}

func printOrderResponse(w io.Writer, r *model.OrderResponse) {
	fmt.Fprintln(w, "\nOrder Response")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Order ID\t%d\n", r.OrderID)
	if r.ClientOrderID != "" {
		fmt.Fprintf(tw, "  Client Order ID\t%s\n", r.ClientOrderID)
	}
	fmt.Fprintf(tw, "  Symbol\t%s\n", r.Symbol)
	fmt.Fprintf(tw, "  Status\t%s\n", r.Status)
	fmt.Fprintf(tw, "  Side\t%s\n", r.Side)
	fmt.Fprintf(tw, "  Type\t%s\n", r.Type)
	fmt.Fprintf(tw, "  Orig Qty\t%s\n", orDash(r.OrigQty))
	fmt.Fprintf(tw, "  Executed Qty\t%s\n", orDash(r.ExecutedQty))
	fmt.Fprintf(tw, "  Avg Price\t%s\n", orDash(r.AvgPrice))
	if r.Price != "" && r.Price != "0" && r.Price != "0.00" {
		fmt.Fprintf(tw, "  Limit Price\t%s\n", r.Price)
	}
	if r.TimeInForce != "" {
		fmt.Fprintf(tw, "  Time In Force\t%s\n", r.TimeInForce)
	}
	if r.UpdateTime > 0 {
		fmt.Fprintf(tw, "  Updated\t%s\n", time.UnixMilli(r.UpdateTime).UTC().Format(time.RFC3339))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
