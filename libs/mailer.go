package libs

import (
	"fmt"
	"html"
	"math"
	"strings"

	"ooru-foods/models"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, pass, from string) (*Mailer, error) {
	if host == "" || user == "" || pass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}, nil
}

func (m *Mailer) SendOrderConfirmation(toEmail string, orderID int, total float64, items []models.CartItem) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%d - Ooru Foods", orderID))
	msg.SetBody("text/html", orderConfirmationBody(orderID, total, items))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func orderConfirmationBody(orderID int, total float64, items []models.CartItem) string {
	var lines strings.Builder
	for _, item := range items {
		name := fmt.Sprintf("Product #%d", item.ProductID)
		price := 0.0
		if item.Product != nil {
			name = html.EscapeString(item.Product.Name)
			price = item.Product.Price
		}
		fmt.Fprintf(&lines, "<tr><td>%s</td><td>%d</td><td>&#8377; %s</td></tr>\n",
			name, item.Quantity, FormatRupee(price*float64(item.Quantity)))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #faf6f0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        .logo { font-size: 24px; font-weight: bold; color: #b45309; text-align: center; }
        .order-box { background-color: #fef3c7; padding: 20px; margin: 20px 0; border-radius: 8px; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">Ooru Foods</div>
        <h2>Order Confirmation</h2>
        <p>Thank you for your order!</p>
        <div class="order-box">
            <p><strong>Order Number:</strong> %d</p>
            <table>
%s            </table>
            <p><strong>Total Amount:</strong> &#8377; %s</p>
        </div>
        <div class="footer">
            <p>&copy; Ooru Foods. All rights reserved.</p>
        </div>
    </div>
</body>
</html>
`, orderID, lines.String(), FormatRupee(total))
}

// FormatRupee renders an amount with comma thousands separators and two decimals.
func FormatRupee(amount float64) string {
	negative := amount < 0
	cents := int64(math.Round(math.Abs(amount) * 100))
	whole := fmt.Sprintf("%d", cents/100)

	n := len(whole)
	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	s := fmt.Sprintf("%s.%02d", b.String(), cents%100)
	if negative {
		return "-" + s
	}
	return s
}
