package services

import (
	"fmt"
	"net/url"
	"strconv"
)

const vietQRBaseURL = "https://img.vietqr.io/image"

// VietQRConfig is the bank routing used to build transfer QR codes.
type VietQRConfig struct {
	BankID      string
	AccountNo   string
	AccountName string
	Template    string
}

// Enabled reports whether enough routing is configured to build a URL.
func (c VietQRConfig) Enabled() bool {
	return c.BankID != "" && c.AccountNo != ""
}

// BuildVietQRURL returns the quick-link image URL for a transfer of amount
// with orderNumber as the transfer note.
func BuildVietQRURL(cfg VietQRConfig, amount int64, orderNumber string) string {
	template := cfg.Template
	if template == "" {
		template = "compact2"
	}

	query := url.Values{}
	query.Set("amount", strconv.FormatInt(amount, 10))
	query.Set("addInfo", orderNumber)
	if cfg.AccountName != "" {
		query.Set("accountName", cfg.AccountName)
	}

	return fmt.Sprintf("%s/%s-%s-%s.png?%s",
		vietQRBaseURL,
		url.PathEscape(cfg.BankID),
		url.PathEscape(cfg.AccountNo),
		url.PathEscape(template),
		query.Encode(),
	)
}
