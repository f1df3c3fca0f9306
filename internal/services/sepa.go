package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// TransferDetails décrit un virement SEPA attendu pour une commande.
type TransferDetails struct {
	Name      string  `json:"beneficiary"`
	IBAN      string  `json:"iban"`
	BIC       string  `json:"bic"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
}

// EPCPayload construit le contenu d'un QR EPC (SEPA Credit Transfer).
func EPCPayload(d TransferDetails) (string, error) {
	iban := strings.ReplaceAll(strings.ToUpper(d.IBAN), " ", "")
	if iban == "" || d.Name == "" {
		return "", errors.New("IBAN ou bénéficiaire manquant")
	}
	if d.Amount <= 0 {
		return "", fmt.Errorf("montant invalide: %.2f", d.Amount)
	}

	lines := []string{
		"BCD",
		"001",
		"1",
		"SCT",
		strings.ToUpper(strings.TrimSpace(d.BIC)),
		d.Name,
		iban,
		fmt.Sprintf("EUR%.2f", d.Amount),
		"", // code motif
		"", // référence structurée
		d.Reference,
	}
	return strings.Join(lines, "\n"), nil
}

// SepaQR génère le QR EPC en PNG base64, prêt pour <img src="...">.
func SepaQR(d TransferDetails) (string, error) {
	payload, err := EPCPayload(d)
	if err != nil {
		return "", err
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
