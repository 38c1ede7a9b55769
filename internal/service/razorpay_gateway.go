package service

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

type razorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway creates the production payment gateway.
func NewRazorpayGateway(keyID, keySecret string) PaymentGateway {
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amount float64) (*GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   int64(amount * 100), // rupees to paise
		"currency": "INR",
		"receipt":  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
		"notes": map[string]interface{}{
			"description": "Credit purchase for roleplay AI",
		},
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	id, _ := order["id"].(string)
	currency, _ := order["currency"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order create: missing order id in response")
	}
	var paise int64
	switch v := order["amount"].(type) {
	case float64:
		paise = int64(v)
	case int64:
		paise = v
	}

	return &GatewayOrder{ID: id, Amount: paise, Currency: currency}, nil
}
