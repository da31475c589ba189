package captcha

import "errors"

var (
	ErrNoChallenge = errors.New("no challenge pending")
	ErrExpired     = errors.New("challenge expired")
	ErrMismatch    = errors.New("challenge solution incorrect")
)
