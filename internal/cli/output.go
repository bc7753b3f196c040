package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mcoot/gamestore/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []response.Record[response.GameFields]:
		o.printGames(v)
	case []response.Record[response.HighScoreFields]:
		o.printHighScores(v)
	case []response.Record[response.SaleFields]:
		o.printSales(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case LoginResult:
		fmt.Fprintf(o.w, "Logged in as %s\n", v.Username)
	case CheckoutResult:
		o.printCheckout(v)
	case PaymentResult:
		o.printPayment(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// LoginResult is printed after a successful login
type LoginResult struct {
	Username     string `json:"username"`
	SessionToken string `json:"session_token"`
}

// CheckoutResult is the payment form the store hands over for a purchase
type CheckoutResult struct {
	Game       string `json:"game"`
	PID        string `json:"pid"`
	SID        string `json:"sid"`
	Amount     string `json:"amount"`
	Checksum   string `json:"checksum"`
	PaymentURL string `json:"payment_url"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
	ErrorURL   string `json:"error_url"`
}

// PaymentResult is a simulated payment callback and the store's answer
type PaymentResult struct {
	PID      string `json:"pid"`
	Ref      string `json:"ref"`
	Result   string `json:"result"`
	Checksum string `json:"checksum"`
	Message  string `json:"message"`
}

func (o *Output) table(header string, rows func(w io.Writer)) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func (o *Output) printGames(games []response.Record[response.GameFields]) {
	if len(games) == 0 {
		fmt.Fprintln(o.w, "No games found.")
		return
	}
	o.table("ID\tNAME\tCATEGORY\tPRICE\tDEVELOPER", func(w io.Writer) {
		for _, g := range games {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", g.PK, g.Fields.Name, g.Fields.Category, g.Fields.Price, g.Fields.Developer)
		}
	})
}

func (o *Output) printHighScores(scores []response.Record[response.HighScoreFields]) {
	if len(scores) == 0 {
		fmt.Fprintln(o.w, "No scores found.")
		return
	}
	o.table("GAME\tPLAYER\tSCORE", func(w io.Writer) {
		for _, s := range scores {
			fmt.Fprintf(w, "%s\t%s\t%d\n", s.Fields.Game, s.Fields.Player, s.Fields.Score)
		}
	})
}

func (o *Output) printSales(sales []response.Record[response.SaleFields]) {
	if len(sales) == 0 {
		fmt.Fprintln(o.w, "No sales found.")
		return
	}
	o.table("ORDER\tGAME\tBUYER\tPRICE\tSTATUS\tTIME", func(w io.Writer) {
		for _, s := range sales {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", s.PK, s.Fields.Game, s.Fields.Buyer,
				s.Fields.Price, s.Fields.Status, s.Fields.PurchaseTime.Format(time.DateTime))
		}
	})
}

func (o *Output) printCheckout(c CheckoutResult) {
	fmt.Fprintf(o.w, "Order %s created for %s (%s)\n", c.PID, c.Game, c.Amount)
	fmt.Fprintf(o.w, "Checksum: %s\n", c.Checksum)
	fmt.Fprintf(o.w, "Payment service: %s\n", c.PaymentURL)
}

func (o *Output) printPayment(p PaymentResult) {
	fmt.Fprintf(o.w, "Order %s: %s (ref %s)\n", p.PID, p.Message, p.Ref)
}
