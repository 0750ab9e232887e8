package utils

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// MembershipQR encodes a membership code as a QR PNG and returns it as a
// data URL ready for an <img> tag. The image is generated once at member
// creation and stored with the row, never regenerated per view.
func MembershipQR(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
