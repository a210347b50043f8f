package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/dermapay-backend/internal/deposyt"
	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/fee"
)

const secretEnv = "DEPOSYT_WEBHOOK_SECRET"

func feeCmd() *cobra.Command {
	var payer, rate string

	cmd := &cobra.Command{
		Use:   "fee [amount]",
		Short: "Show what the customer is charged for an amount in minor units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be an integer in minor units: %w", err)
			}
			r, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", rate, err)
			}
			policy, err := fee.NewPolicy(r)
			if err != nil {
				return err
			}

			charged, err := policy.ComputeCharge(amount, domain.FeePayer(payer))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "requested=%d charged=%d surcharge=%d payer=%s rate=%s\n",
				amount, charged, charged-amount, payer, policy.SurchargeRate())
			return nil
		},
	}

	cmd.Flags().StringVarP(&payer, "payer", "p", string(domain.FeePayerCustomer), "Who pays the fee (merchant, customer)")
	cmd.Flags().StringVarP(&rate, "rate", "r", fee.DefaultSurchargeRate.String(), "Surcharge rate")

	return cmd
}

func signCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign [file]",
		Short: "Print the X-Deposyt-Signature for a body (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or %s is required", secretEnv)
			}

			var body []byte
			var err error
			if len(args) == 1 && args[0] != "-" {
				body, err = os.ReadFile(args[0])
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), deposyt.Sign(body, secret))
			return nil
		},
	}

	cmd.Flags().StringVarP(&secret, "secret", "s", os.Getenv(secretEnv), "Webhook signing secret")

	return cmd
}

func notifyCmd() *cobra.Command {
	var (
		url, secret, eventType, paymentID string
		timeout                           time.Duration
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Deliver a signed payment notification to a webhook URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or %s is required", secretEnv)
			}
			if paymentID == "" {
				return fmt.Errorf("--payment-id is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := deposyt.NewNotifier(secret, timeout).Send(ctx, url, deposyt.Event{
				EventType: eventType,
				PaymentID: paymentID,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "delivered %s for %s: %d\n", eventType, paymentID, status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080/api/v1/webhooks/deposyt", "Webhook URL")
	cmd.Flags().StringVarP(&secret, "secret", "s", os.Getenv(secretEnv), "Webhook signing secret")
	cmd.Flags().StringVarP(&eventType, "event", "e", "payment.succeeded", "Event type")
	cmd.Flags().StringVar(&paymentID, "payment-id", "", "Processor payment id (checkout session id)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}
