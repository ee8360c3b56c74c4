package middleware

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/tgaisser/ocb/config"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"
)

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

var (
	signingKeys   = map[string]*rsa.PublicKey{}
	signingKeysMu sync.RWMutex
	keyCron       *cron.Cron
)

// GetSigningKey returns the cached RSA public key for a key id, if known.
func GetSigningKey(kid string) (*rsa.PublicKey, bool) {
	signingKeysMu.RLock()
	defer signingKeysMu.RUnlock()
	key, ok := signingKeys[kid]
	return key, ok
}

// RefreshSigningKeys fetches the issuer's JWKS document and replaces the cached
// key set. Existing keys are kept on fetch failure so token validation can
// continue with the last good set.
func RefreshSigningKeys() error {
	issuer := strings.TrimRight(config.AppConfig.AuthIssuer, "/")
	if issuer == "" {
		return fmt.Errorf("auth issuer is not configured")
	}

	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().Get(issuer + "/.well-known/jwks.json")
	if err != nil {
		return fmt.Errorf("failed to fetch jwks: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode())
	}

	var set jwkSet
	if err := json.Unmarshal(resp.Body(), &set); err != nil {
		return fmt.Errorf("failed to parse jwks: %w", err)
	}

	keys := map[string]*rsa.PublicKey{}
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRsaKey(k)
		if err != nil {
			log.Printf("Skipping signing key %s: %v", k.Kid, err)
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return fmt.Errorf("jwks document contained no usable keys")
	}

	signingKeysMu.Lock()
	signingKeys = keys
	signingKeysMu.Unlock()

	log.Printf("Loaded %d signing keys from %s", len(keys), issuer)
	return nil
}

func parseRsaKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("bad modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("bad exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// StartKeyRefresh loads the signing keys and schedules a refresh every ten
// minutes so key rotation at the issuer is picked up without a restart.
func StartKeyRefresh() {
	if err := RefreshSigningKeys(); err != nil {
		log.Printf("Initial signing key load failed: %v", err)
	}

	keyCron = cron.New()
	_, err := keyCron.AddFunc("@every 10m", func() {
		if err := RefreshSigningKeys(); err != nil {
			log.Printf("Signing key refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Failed to schedule signing key refresh: %v", err)
		return
	}
	keyCron.Start()
}

// StopKeyRefresh halts the scheduled JWKS refresh.
func StopKeyRefresh() {
	if keyCron != nil {
		keyCron.Stop()
	}
}
