package mailer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/AvalonLA/atelier/config"
	"github.com/AvalonLA/atelier/internal/domain"
)

// Mailer sends transactional mail. With no SMTP host configured every
// send is a logged no-op, which keeps demo installs working offline.
type Mailer struct {
	cfg config.MailConfig
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) enabled() bool {
	return m.cfg.SmtpHost != ""
}

// SendOrderConfirmation mails the checkout confirmation to the order's
// destination email. Failures are logged, never returned to checkout.
func (m *Mailer) SendOrderConfirmation(order *domain.Order) {
	if !m.enabled() {
		zap.L().Debug("mailer disabled, skipping order confirmation",
			zap.String("order_id", order.ID))
		return
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hola %s,\r\n\r\n", order.FirstName)
	fmt.Fprintf(&body, "Gracias por tu compra. Pedido %s confirmado.\r\n\r\n", order.ID)
	for _, it := range order.Items {
		fmt.Fprintf(&body, "  %d x %s  $%.2f\r\n", it.Quantity, it.ProductName, it.Price)
	}
	fmt.Fprintf(&body, "\r\nTotal: $%.2f\r\n", order.Total())
	fmt.Fprintf(&body, "Envío a: %s\r\n", order.Address)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", order.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Pedido confirmado · %s", order.ID))
	msg.SetBody("text/plain", body.String())

	dialer := gomail.NewDialer(m.cfg.SmtpHost, m.cfg.SmtpPort, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		zap.L().Error("failed to send order confirmation",
			zap.String("order_id", order.ID),
			zap.String("email", order.Email),
			zap.Error(err))
	}
}
