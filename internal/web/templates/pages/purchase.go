package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/web/templates/layout"
)

// CheckoutData contains the fields posted to the payment service
type CheckoutData struct {
	layout.PageData
	GameName   string
	PID        model.OrderID
	SID        string
	Amount     string
	Checksum   string
	PaymentURL string
	SuccessURL string
	CancelURL  string
	ErrorURL   string
}

// Checkout renders the confirmation page whose form hands the buyer over to the payment service
func Checkout(data CheckoutData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<h1>Buy `)
		p.Text(data.GameName)
		p.Raw(`</h1><p>Price: <span id="amount">`)
		p.Text(data.Amount)
		p.Raw(`</span></p><form id="payment_form" method="post" action="`)
		p.Text(data.PaymentURL)
		p.Raw(`">`)
		hidden(p, "pid", strconv.FormatUint(uint64(data.PID), 10))
		hidden(p, "sid", data.SID)
		hidden(p, "amount", data.Amount)
		hidden(p, "success_url", data.SuccessURL)
		hidden(p, "cancel_url", data.CancelURL)
		hidden(p, "error_url", data.ErrorURL)
		hidden(p, "checksum", data.Checksum)
		p.Raw(`<button type="submit">Go to payment</button></form>`)
	}))
}

func hidden(p *layout.Printer, name, value string) {
	p.Raw(`<input type="hidden" name="`)
	p.Text(name)
	p.Raw(`" value="`)
	p.Text(value)
	p.Raw(`">`)
}

// PostPaymentData contains data for the page shown after returning from the payment service
type PostPaymentData struct {
	layout.PageData
	Result string // success, cancel or error
	Game   *model.Game
	Order  *model.Order
}

// PostPayment renders the outcome of a payment
func PostPayment(data PostPaymentData) templ.Component {
	return layout.Base(data.PageData, layout.Component(func(p *layout.Printer) {
		p.Raw(`<div id="payment_result" data-result="`)
		p.Text(data.Result)
		p.Raw(`">`)
		switch data.Result {
		case "success":
			id := strconv.FormatUint(uint64(data.Game.ID), 10)
			p.Raw(`<h1>Thank you!</h1><p>Order `)
			p.Text(strconv.FormatUint(uint64(data.Order.ID), 10))
			p.Raw(` is paid. `)
			p.Raw(`<a href="/game/`)
			p.Text(id)
			p.Raw(`/">Play `)
			p.Text(data.Game.Name)
			p.Raw(` now</a>.</p>`)
		case "cancel":
			p.Raw(`<h1>Payment cancelled</h1><p>No money was charged.</p>`)
		default:
			p.Raw(`<h1>Payment failed</h1><p>The payment service reported an error. Please try again later.</p>`)
		}
		p.Raw(`</div><p><a href="/gamelist/">Back to games</a></p>`)
	}))
}
