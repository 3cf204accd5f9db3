package netsuite

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"
)

func fixedSigner() *OAuthSigner {
	s := NewOAuthSigner("1234567_SB1", "ckey", "csecret", "tkey", "tsecret")
	s.Nonce = func() string { return "abc123" }
	s.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return s
}

func TestHeaderDeterministic(t *testing.T) {
	rawURL := "https://1234567-sb1.suitetalk.api.netsuite.com/services/rest/query/v1/suiteql?limit=1000&offset=0"

	first, err := fixedSigner().Header("POST", rawURL)
	if err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	second, err := fixedSigner().Header("POST", rawURL)
	if err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	if first != second {
		t.Errorf("headers differ:\n%s\n%s", first, second)
	}

	if !strings.HasPrefix(first, `OAuth realm="1234567_SB1",oauth_consumer_key="ckey",oauth_token="tkey",oauth_signature_method="HMAC-SHA256",oauth_timestamp="1700000000",oauth_nonce="abc123",oauth_version="1.0",oauth_signature="`) {
		t.Errorf("unexpected header layout: %s", first)
	}

	other := fixedSigner()
	other.Nonce = func() string { return "different" }
	third, _ := other.Header("POST", rawURL)
	if third == first {
		t.Error("expected a different nonce to change the header")
	}
}

func TestBaseStringSortsParameters(t *testing.T) {
	s := fixedSigner()
	u, _ := url.Parse("https://Host.Example.com/services/rest/query/v1/suiteql?offset=0&limit=1000&a%20b=x~y")
	oauth := map[string]string{
		"oauth_consumer_key":     "ckey",
		"oauth_nonce":            "abc123",
		"oauth_signature_method": "HMAC-SHA256",
		"oauth_timestamp":        "1700000000",
		"oauth_token":            "tkey",
		"oauth_version":          "1.0",
	}

	got := s.baseString("post", u, oauth)
	want := "POST&https%3A%2F%2Fhost.example.com%2Fservices%2Frest%2Fquery%2Fv1%2Fsuiteql&" +
		"a%2520b%3Dx~y%26limit%3D1000%26oauth_consumer_key%3Dckey%26oauth_nonce%3Dabc123" +
		"%26oauth_signature_method%3DHMAC-SHA256%26oauth_timestamp%3D1700000000" +
		"%26oauth_token%3Dtkey%26oauth_version%3D1.0%26offset%3D0"
	if got != want {
		t.Errorf("baseString() =\n%s\nwant\n%s", got, want)
	}
}

func TestSignatureMatchesHMAC(t *testing.T) {
	s := fixedSigner()
	base := "GET&https%3A%2F%2Fexample.com%2Frecord&oauth_nonce%3Dabc123"

	mac := hmac.New(sha256.New, []byte("csecret&tsecret"))
	mac.Write([]byte(base))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if got := s.sign(base); got != want {
		t.Errorf("sign() = %s, want %s", got, want)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc-._~", "abc-._~"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"x=y&z", "x%3Dy%26z"},
		{"é", "%C3%A9"},
	}
	for _, tt := range tests {
		if got := encode(tt.in); got != tt.want {
			t.Errorf("encode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
