package cli

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mcoot/gamestore/internal/api/response"
	"github.com/mcoot/gamestore/internal/services/purchase"
)

func newLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := client.Login(user, pass)
			if err != nil {
				return err
			}
			if err := cfg.SaveToken(token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(LoginResult{Username: user, SessionToken: token})
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

// setIfChanged adds a query parameter only when the flag was given, so an
// explicitly empty value still reaches the server
func setIfChanged(cmd *cobra.Command, q url.Values, flag, param string) {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		q.Set(param, f.Value.String())
	}
}

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "List games in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIfChanged(cmd, q, "category", "category")
			setIfChanged(cmd, q, "developer", "developer")

			var result []response.Record[response.GameFields]
			if err := client.GetJSON("/rest/games/", q, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().String("category", "", "Only games in this category")
	cmd.Flags().String("developer", "", "Only games by this developer username")

	return cmd
}

func newHighScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highscores",
		Short: "List high scores, best first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIfChanged(cmd, q, "game", "game")

			var result []response.Record[response.HighScoreFields]
			if err := client.GetJSON("/rest/highscores/", q, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().String("game", "", "Only scores of the game with this name")

	return cmd
}

func newSalesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List sales of your games (developers only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIfChanged(cmd, q, "order", "order")
			setIfChanged(cmd, q, "game", "game")
			setIfChanged(cmd, q, "buyer", "buyer")
			setIfChanged(cmd, q, "status", "status")

			var result []response.Record[response.SaleFields]
			if err := client.GetJSON("/rest/sales/", q, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().String("order", "", "Only the order with this ID")
	cmd.Flags().String("game", "", "Only sales of the game with this name")
	cmd.Flags().String("buyer", "", "Only sales to this username")
	cmd.Flags().String("status", "", "Only sales with this status (paid or not_paid)")

	return cmd
}

func newBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <game-id>",
		Short: "Start buying a game and show the payment form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := client.Page(http.MethodPost, "/buygame/"+args[0]+"/", nil)
			if err != nil {
				return err
			}

			form := doc.Find("form#payment_form")
			if form.Length() == 0 {
				return errors.New("no payment form in the store response")
			}
			field := func(name string) string {
				return form.Find(`input[name="` + name + `"]`).AttrOr("value", "")
			}
			result := CheckoutResult{
				Game:       strings.TrimPrefix(strings.TrimSpace(doc.Find("h1").First().Text()), "Buy "),
				PID:        field("pid"),
				SID:        field("sid"),
				Amount:     field("amount"),
				Checksum:   field("checksum"),
				PaymentURL: form.AttrOr("action", ""),
				SuccessURL: field("success_url"),
				CancelURL:  field("cancel_url"),
				ErrorURL:   field("error_url"),
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPayCmd() *cobra.Command {
	var pid, result, ref string

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Simulate the payment service calling back for an order",
		Long: `pay acts as the payment service for an order created with buy.

It signs the callback with the shared payment secret and calls the store's
success, cancel or error page as the logged-in buyer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch result {
			case purchase.ResultSuccess, purchase.ResultCancel, purchase.ResultError:
			default:
				return fmt.Errorf("--result must be %s, %s or %s", purchase.ResultSuccess, purchase.ResultCancel, purchase.ResultError)
			}
			if ref == "" {
				ref = uuid.NewString()
			}

			callback := PaymentResult{
				PID:      pid,
				Ref:      ref,
				Result:   result,
				Checksum: purchase.ResultChecksum(pid, ref, result, cfg.PaymentSecret),
			}
			q := url.Values{
				"pid":      {callback.PID},
				"ref":      {callback.Ref},
				"result":   {callback.Result},
				"checksum": {callback.Checksum},
			}

			doc, err := client.Page(http.MethodGet, "/payment/"+result+"/", q)
			if err != nil {
				return err
			}
			callback.Message = paymentMessage(doc)

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(callback)
			return nil
		},
	}

	cmd.Flags().StringVar(&pid, "pid", "", "Order ID from the payment form (required)")
	cmd.Flags().StringVar(&result, "result", purchase.ResultSuccess, "Payment outcome: success, cancel or error")
	cmd.Flags().StringVar(&ref, "ref", "", "Payment reference (default: a random UUID)")
	_ = cmd.MarkFlagRequired("pid")

	return cmd
}

func paymentMessage(doc *goquery.Document) string {
	if msg := strings.TrimSpace(doc.Find("#payment_result h1").First().Text()); msg != "" {
		return msg
	}
	return "callback accepted"
}
