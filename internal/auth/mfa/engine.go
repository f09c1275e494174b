// Package mfa implements TOTP enrolment and verification and the single-use
// backup codes that stand in for a TOTP code.
package mfa

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookit/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// BackupCodeCount is how many backup codes are issued at once.
	BackupCodeCount = 10

	// BackupCodeLength is the length of one backup code.
	BackupCodeLength = 8

	secretSize = 20 // 160 bits
	period     = 30
	skew       = 2 // accepted steps either side of now
	qrSize     = 256
)

var ErrEmptyLabel = errors.New("mfa: account label is required")

// Secret is a freshly generated TOTP secret. None of it is persisted by the
// engine; the caller seals Secret before storing it.
type Secret struct {
	Secret          string // base32
	ProvisioningURI string // otpauth://totp/...
	DisplayKey      string // base32, for manual entry
}

// Engine generates and checks TOTP secrets and backup codes.
type Engine struct {
	Issuer string
	Box    *cryptox.SecretBox
	Now    func() time.Time
}

// NewEngine returns an engine that labels secrets with issuer and seals
// them with box.
func NewEngine(issuer string, box *cryptox.SecretBox) *Engine {
	return &Engine{Issuer: issuer, Box: box, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// GenerateSecret creates a random secret bound to label, normally the
// account email.
func (e *Engine) GenerateSecret(label string) (Secret, error) {
	if strings.TrimSpace(label) == "" {
		return Secret{}, ErrEmptyLabel
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.Issuer,
		AccountName: label,
		Period:      period,
		SecretSize:  secretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Secret{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return Secret{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		DisplayKey:      key.Secret(),
	}, nil
}

// QRCode renders a provisioning URI as a PNG data URL.
func (e *Engine) QRCode(provisioningURI string) (string, error) {
	key, err := otp.NewKeyFromURL(provisioningURI)
	if err != nil {
		return "", fmt.Errorf("failed to parse provisioning uri: %w", err)
	}

	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// VerifyCode checks a 6 digit code against a base32 secret at the current
// time. Any error inside the validator counts as a mismatch.
func (e *Engine) VerifyCode(code, secret string) bool {
	return VerifyCodeAt(code, secret, e.now())
}

// VerifyCodeAt checks code against secret at t, accepting codes up to two
// 30 second steps either side.
func VerifyCodeAt(code, secret string, t time.Time) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	code = strings.TrimSpace(code)
	if code == "" || secret == "" {
		return false
	}

	valid, err := totp.ValidateCustom(code, secret, t.UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && valid
}

// EncryptSecret seals a plaintext secret for storage.
func (e *Engine) EncryptSecret(plaintext string) (string, error) {
	return e.Box.Seal(plaintext)
}

// DecryptSecret opens a secret sealed by EncryptSecret.
func (e *Engine) DecryptSecret(sealed string) (string, error) {
	return e.Box.Open(sealed)
}

// GenerateBackupCodes returns count distinct alphanumeric codes. They are
// shown to the user once and only their hashes are kept.
func GenerateBackupCodes(count int) ([]string, error) {
	codes := make([]string, 0, count)
	for len(codes) < count {
		code, err := cryptox.AlphanumericCode(BackupCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		if slices.Contains(codes, code) {
			continue
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// HashBackupCode returns the stored digest of code. Codes are compared case
// insensitively.
func HashBackupCode(code string) string {
	return cryptox.SHA256Hex(strings.ToUpper(strings.TrimSpace(code)))
}

// HashBackupCodes hashes every code in order.
func HashBackupCodes(codes []string) []string {
	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = HashBackupCode(c)
	}
	return hashes
}

// VerifyBackupCode reports whether code is in hashes.
func VerifyBackupCode(code string, hashes []string) bool {
	if strings.TrimSpace(code) == "" {
		return false
	}
	return slices.Contains(hashes, HashBackupCode(code))
}

// RemoveBackupCode returns hashes without the digest of code. Removing a
// code that is absent returns an equal set.
func RemoveBackupCode(code string, hashes []string) []string {
	h := HashBackupCode(code)
	out := make([]string, 0, len(hashes))
	for _, v := range hashes {
		if v != h {
			out = append(out, v)
		}
	}
	return out
}
