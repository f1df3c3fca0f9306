package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"cosmetics_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order models.Order) error
	SendTransferInstructions(ctx context.Context, order models.Order, transfer TransferDetails, qr string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Company  string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	body, err := RenderOrderConfirmation(m.cfg.Company, order)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s - Confirmation de commande %s", m.cfg.Company, order.Reference())
	return m.send(ctx, order.Email, subject, body)
}

func (m *SMTPMailer) SendTransferInstructions(ctx context.Context, order models.Order, transfer TransferDetails, qr string) error {
	body, err := RenderTransferInstructions(m.cfg.Company, order, transfer, qr)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s - Instructions de virement %s", m.cfg.Company, order.Reference())
	return m.send(ctx, order.Email, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSendWithContext(ctx, msg)
}

// LogMailer remplace l'envoi SMTP quand aucun serveur n'est configuré.
type LogMailer struct{}

func (LogMailer) SendOrderConfirmation(_ context.Context, order models.Order) error {
	log.Printf("📧 [SMTP désactivé] confirmation %s pour %s (%.2f€)", order.Reference(), order.Email, order.Total)
	return nil
}

func (LogMailer) SendTransferInstructions(_ context.Context, order models.Order, transfer TransferDetails, _ string) error {
	log.Printf("📧 [SMTP désactivé] virement %s attendu de %s: %.2f€ sur %s", transfer.Reference, order.Email, transfer.Amount, transfer.IBAN)
	return nil
}

var emailFuncs = template.FuncMap{
	"euro": func(v float64) string { return fmt.Sprintf("%.2f€", v) },
	"line": func(price float64, qty int) string { return fmt.Sprintf("%.2f€", price*float64(qty)) },
}

var orderTmpl = template.Must(template.New("order").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Merci pour votre commande !</h2>
	<p>Votre commande <strong>{{.Order.Reference}}</strong> a bien été enregistrée.</p>
	<table style="width:100%; border-collapse:collapse;">
		<tr><th align="left">Produit</th><th>Quantité</th><th>Prix</th><th>Total</th></tr>
		{{range .Order.Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td>{{euro .Price}}</td><td>{{line .Price .Quantity}}</td></tr>
		{{end}}
	</table>
	<p>Sous-total : {{euro .Order.Subtotal}}<br>
	Livraison ({{.Order.ShippingMethodName}}) : {{euro .Order.ShippingPrice}}<br>
	<strong>Total : {{euro .Order.Total}}</strong></p>
	{{with .Order.ShippingAddress}}<p>Livraison à : {{.Name}}, {{.Street}}, {{.PostalCode}} {{.City}}, {{.Country}}</p>{{end}}
	{{if .Transfer}}
	<h3>Paiement par virement</h3>
	<p>Bénéficiaire : {{.Transfer.Name}}<br>
	IBAN : {{.Transfer.IBAN}}<br>
	BIC : {{.Transfer.BIC}}<br>
	Montant : {{euro .Transfer.Amount}}<br>
	Communication : <strong>{{.Transfer.Reference}}</strong></p>
	{{if .QR}}<p><img src="{{.QR}}" alt="QR SEPA" width="200" height="200"></p>{{end}}
	<p>Votre commande sera expédiée dès réception du paiement.</p>
	{{end}}
	<p style="color:#888; font-size:12px;">{{.Company}}</p>
</body>
</html>`))

type emailData struct {
	Company  string
	Order    models.Order
	Transfer *TransferDetails
	QR       template.URL
}

func RenderOrderConfirmation(company string, order models.Order) (string, error) {
	return render(emailData{Company: company, Order: order})
}

// RenderTransferInstructions accepte uniquement un QR au format data:image/png.
func RenderTransferInstructions(company string, order models.Order, transfer TransferDetails, qr string) (string, error) {
	data := emailData{Company: company, Order: order, Transfer: &transfer}
	if len(qr) > 22 && qr[:22] == "data:image/png;base64," {
		data.QR = template.URL(qr)
	}
	return render(data)
}

func render(data emailData) (string, error) {
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendu e-mail: %w", err)
	}
	return buf.String(), nil
}
