package lib

import (
	"context"
	"os"
	"strconv"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// CreateStripeCustomer registers a guest with the payment gateway. Called
// lazily on the guest's first booking.
func CreateStripeCustomer(name, email string, userId uint) (*stripe.Customer, error) {
	sc := GetStripeClient()
	params := stripe.CustomerCreateParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
	}
	params.AddMetadata("userId", strconv.FormatUint(uint64(userId), 10))
	return sc.V1Customers.Create(context.Background(), &params)
}

// RefundPaymentIntent issues a full refund for an online payment.
func RefundPaymentIntent(paymentIntentId string) (*stripe.Refund, error) {
	sc := GetStripeClient()
	params := stripe.RefundCreateParams{
		PaymentIntent: stripe.String(paymentIntentId),
	}
	return sc.V1Refunds.Create(context.Background(), &params)
}
