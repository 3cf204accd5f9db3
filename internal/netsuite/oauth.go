package netsuite

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const signatureMethod = "HMAC-SHA256"

// OAuthSigner builds OAuth 1.0a token-based authorization headers.
// Nonce and Now are replaceable so signatures can be reproduced.
type OAuthSigner struct {
	AccountID      string
	ConsumerKey    string
	ConsumerSecret string
	TokenID        string
	TokenSecret    string

	Nonce func() string
	Now   func() time.Time
}

func NewOAuthSigner(accountID, consumerKey, consumerSecret, tokenID, tokenSecret string) *OAuthSigner {
	return &OAuthSigner{
		AccountID:      accountID,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		TokenID:        tokenID,
		TokenSecret:    tokenSecret,
		Nonce:          func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
		Now:            time.Now,
	}
}

// Header returns the Authorization header value for a request.
func (s *OAuthSigner) Header(method, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	oauth := map[string]string{
		"oauth_consumer_key":     s.ConsumerKey,
		"oauth_token":            s.TokenID,
		"oauth_signature_method": signatureMethod,
		"oauth_timestamp":        strconv.FormatInt(s.Now().Unix(), 10),
		"oauth_nonce":            s.Nonce(),
		"oauth_version":          "1.0",
	}

	base := s.baseString(method, u, oauth)
	oauth["oauth_signature"] = s.sign(base)

	keys := []string{
		"oauth_consumer_key",
		"oauth_token",
		"oauth_signature_method",
		"oauth_timestamp",
		"oauth_nonce",
		"oauth_version",
		"oauth_signature",
	}
	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, fmt.Sprintf(`realm="%s"`, encode(s.AccountID)))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, encode(oauth[k])))
	}
	return "OAuth " + strings.Join(parts, ","), nil
}

func (s *OAuthSigner) baseString(method string, u *url.URL, oauth map[string]string) string {
	type pair struct{ k, v string }
	params := make([]pair, 0, len(oauth)+len(u.Query()))
	for k, v := range oauth {
		params = append(params, pair{encode(k), encode(v)})
	}
	for k, vs := range u.Query() {
		for _, v := range vs {
			params = append(params, pair{encode(k), encode(v)})
		}
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].k == params[j].k {
			return params[i].v < params[j].v
		}
		return params[i].k < params[j].k
	})

	joined := make([]string, len(params))
	for i, p := range params {
		joined[i] = p.k + "=" + p.v
	}

	baseURL := *u
	baseURL.RawQuery = ""
	baseURL.Fragment = ""
	baseURL.Scheme = strings.ToLower(baseURL.Scheme)
	baseURL.Host = strings.ToLower(baseURL.Host)

	return strings.ToUpper(method) + "&" + encode(baseURL.String()) + "&" + encode(strings.Join(joined, "&"))
}

func (s *OAuthSigner) sign(base string) string {
	key := encode(s.ConsumerSecret) + "&" + encode(s.TokenSecret)
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// encode percent-encodes per RFC 3986: only ALPHA / DIGIT / "-" / "." / "_" / "~" pass through.
func encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}
