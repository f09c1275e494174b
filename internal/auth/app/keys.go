package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/bookit/pkg/cryptox"
	"github.com/aussiebroadwan/bookit/pkg/idx"
	"github.com/aussiebroadwan/bookit/pkg/jwtx"
)

// SessionKeys is the signing material for session tokens.
type SessionKeys struct {
	KeySet   *jwtx.KeySet
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
}

// InitSessionKeys loads the Ed25519 signing key from cfg.SigningKeyFile, or
// generates an ephemeral one. An ephemeral key lives only in memory, so every
// session issued before a restart is invalidated.
func InitSessionKeys(cfg Config, logger *slog.Logger) (*SessionKeys, error) {
	var (
		signer *jwtx.EdDSASigner
		err    error
	)

	if cfg.SigningKeyFile != "" {
		pemKey, readErr := os.ReadFile(cfg.SigningKeyFile)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read signing key: %w", readErr)
		}
		// kid is stable for a given key file so published JWKS survive restarts
		signer, err = jwtx.NewSignerEdDSA(cryptox.SHA256Hex(string(pemKey))[:16], pemKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		logger.Info("loaded signing key", "algorithm", signer.Alg(), "kid", signer.KID(), "issuer", cfg.Issuer)
	} else {
		signer, err = jwtx.GenerateEdDSASigner(idx.New().String())
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		logger.Info("generated ephemeral signing key",
			"algorithm", signer.Alg(),
			"kid", signer.KID(),
			"issuer", cfg.Issuer,
		)
		logger.Warn("all existing sessions are now invalid due to key rotation on startup")
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("failed to publish signing key: %w", err)
	}

	return &SessionKeys{
		KeySet:   keys,
		Signer:   signer,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer),
	}, nil
}

// InitMFABox builds the cipher for TOTP secrets at rest. Without a configured
// key the secrets of enrolled accounts become unreadable after a restart.
func InitMFABox(cfg Config, logger *slog.Logger) (*cryptox.SecretBox, error) {
	if cfg.MFAEncryptionKey != "" {
		return cryptox.NewSecretBox([]byte(cfg.MFAEncryptionKey))
	}

	logger.Warn("AUTH_MFA_ENCRYPTION_KEY not set, using a random key for this process")
	return cryptox.NewEphemeralSecretBox()
}
