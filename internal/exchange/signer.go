package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// signer produces the base64 HMAC-SHA256 signatures used by Bitget and OKX:
// sign(timestamp + METHOD + requestPath + body). Bybit signs hex over its own prehash.
type signer struct {
	key        string
	secret     []byte
	passphrase string
}

func newSigner(key, secret, passphrase string) *signer {
	return &signer{key: key, secret: []byte(secret), passphrase: passphrase}
}

func (s *signer) complete() bool {
	return s.key != "" && len(s.secret) > 0 && s.passphrase != ""
}

func (s *signer) sign(timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(timestamp + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *signer) signHex(prehash string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(prehash))
	return hex.EncodeToString(mac.Sum(nil))
}
