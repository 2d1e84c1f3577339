package provider

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/sells-group/interview-copilot/internal/settings"
)

// hfTokenPrefix marks Hugging Face access tokens. The text-generation
// provider upgrades such credentials to bearer format even when the
// configured scheme would send them raw, since the API rejects bare tokens.
const hfTokenPrefix = "hf_"

// ApplyAuth sets the configured auth header on h according to the scheme.
// With no usable credential material it leaves h untouched.
func ApplyAuth(h http.Header, s settings.Settings) {
	name := s.HeaderName
	if name == "" {
		name = "Authorization"
	}

	switch s.AuthScheme {
	case settings.AuthBearer:
		if s.APIKey != "" {
			h.Set(name, "Bearer "+s.APIKey)
		}
	case settings.AuthBasic:
		if v, ok := basicValue(s); ok {
			h.Set(name, "Basic "+v)
		}
	case settings.AuthRaw:
		if s.APIKey != "" {
			h.Set(name, s.APIKey)
		}
	}
}

// basicValue resolves the credential material for Basic auth, in order of
// preference: explicit username/password, a stored "user:pass" credential,
// a credential that already looks base64-encoded, and finally the raw
// credential encoded as-is.
func basicValue(s settings.Settings) (string, bool) {
	if s.BasicUsername != "" || s.BasicPassword != "" {
		return base64.StdEncoding.EncodeToString([]byte(s.BasicUsername + ":" + s.BasicPassword)), true
	}
	if s.APIKey == "" {
		return "", false
	}
	if strings.Contains(s.APIKey, ":") {
		return base64.StdEncoding.EncodeToString([]byte(s.APIKey)), true
	}
	if looksLikeBase64(s.APIKey) {
		return s.APIKey, true
	}
	return base64.StdEncoding.EncodeToString([]byte(s.APIKey)), true
}

func looksLikeBase64(v string) bool {
	if len(v) < 12 || len(v)%4 != 0 {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+' || c == '/':
		case c == '=':
			// Padding only at the tail.
			if i < len(v)-2 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// upgradeHFBearer rewrites the auth header to bearer format when the
// credential is a Hugging Face token that the generic scheme left
// unformatted. Layered after ApplyAuth, never before.
func upgradeHFBearer(h http.Header, s settings.Settings) {
	if !strings.HasPrefix(s.APIKey, hfTokenPrefix) {
		return
	}
	name := s.HeaderName
	if name == "" {
		name = "Authorization"
	}
	if strings.HasPrefix(h.Get(name), "Bearer ") {
		return
	}
	h.Set(name, "Bearer "+s.APIKey)
}
