// Package qrcode generates QR code images for two-factor provisioning URIs,
// either as raw PNG bytes or as a data-URI string ready for an <img> tag.
//
// It is a thin wrapper around github.com/skip2/go-qrcode with input
// validation and sensible defaults.
package qrcode
