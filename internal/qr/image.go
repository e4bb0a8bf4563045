package qr

import (
	qrcode "github.com/skip2/go-qrcode"
)

// Image renders the payload as a PNG suitable for printing on a badge.
func (p Payload) Image(size int) ([]byte, error) {
	encoded, err := p.Encode()
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(encoded, qrcode.Medium, size)
}
