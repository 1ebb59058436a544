package internal

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	oauthVersion        = "1.0"
	oauthSignatureHMAC  = "HMAC-SHA1"
	authorizationPrefix = "OAuth "

	paramConsumerKey     = "oauth_consumer_key"
	paramNonce           = "oauth_nonce"
	paramSignature       = "oauth_signature"
	paramSignatureMethod = "oauth_signature_method"
	paramTimestamp       = "oauth_timestamp"
	paramToken           = "oauth_token"
	paramVersion         = "oauth_version"
)

// Signer computes OAuth 1.0a HMAC-SHA1 request signatures and renders them as
// Authorization header values. It performs no I/O and holds no mutable state,
// so a single Signer is safe for concurrent use.
type Signer struct {
	consumerKey    string
	consumerSecret string

	// nonce and now are injection points so tests can pin the signature.
	nonce func() string
	now   func() time.Time
}

// NewSigner creates a signer for the given consumer key pair.
func NewSigner(consumerKey, consumerSecret string) *Signer {
	return &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		nonce:          newNonce,
		now:            time.Now,
	}
}

// newNonce returns a per-request uniqueness value. UUIDs are already
// collision-free; the dashes are stripped to keep the header compact.
func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Authorization builds the OAuth Authorization header value for a request.
//
// The signature base string covers the upper-cased method, the normalized
// request URL, and every parameter that travels with the request: the URL
// query, the form body (when the body is application/x-www-form-urlencoded),
// the standard oauth_* protocol parameters, and any caller-supplied extra
// oauth_* parameters such as oauth_callback or oauth_verifier during the
// handshake. An empty token signs the request-token step; an empty tokenSecret
// is valid during the handshake's pending state.
func (s *Signer) Authorization(method string, reqURL *url.URL, form url.Values, token, tokenSecret string, extra map[string]string) string {
	oauthParams := map[string]string{
		paramConsumerKey:     s.consumerKey,
		paramNonce:           s.nonce(),
		paramSignatureMethod: oauthSignatureHMAC,
		paramTimestamp:       strconv.FormatInt(s.now().Unix(), 10),
		paramVersion:         oauthVersion,
	}
	if token != "" {
		oauthParams[paramToken] = token
	}
	for k, v := range extra {
		oauthParams[k] = v
	}

	base := signatureBase(method, reqURL, form, oauthParams)
	oauthParams[paramSignature] = s.signature(base, tokenSecret)

	return authorizationHeader(oauthParams)
}

// signature computes base64(HMAC-SHA1(key, base)) where the key is the
// percent-encoded consumer secret and token secret joined by '&'.
func (s *Signer) signature(base, tokenSecret string) string {
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signatureBase builds the RFC 5849 signature base string:
// METHOD&enc(baseURL)&enc(normalizedParams).
func signatureBase(method string, reqURL *url.URL, form url.Values, oauthParams map[string]string) string {
	params := url.Values{}
	for k, vs := range reqURL.Query() {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	for k, vs := range form {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	for k, v := range oauthParams {
		params.Add(k, v)
	}

	return strings.ToUpper(method) + "&" + percentEncode(baseURI(reqURL)) + "&" + percentEncode(normalizeParams(params))
}

// baseURI reduces a URL to scheme://host/path with lower-cased scheme and
// host and default ports stripped, per the signature base string rules.
func baseURI(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	return scheme + "://" + host + u.EscapedPath()
}

// normalizeParams percent-encodes every key and value, sorts pairs by encoded
// key with encoded value as the tie-break, and joins them as k=v&k=v.
func normalizeParams(params url.Values) string {
	pairs := make([][2]string, 0, len(params))
	for k, vs := range params {
		ek := percentEncode(k)
		for _, v := range vs {
			pairs = append(pairs, [2]string{ek, percentEncode(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p[0])
		sb.WriteByte('=')
		sb.WriteString(p[1])
	}
	return sb.String()
}

// authorizationHeader renders the oauth_* parameter set (signature included)
// as an 'OAuth k="v", ...' header value with keys in sorted order.
func authorizationHeader(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(authorizationPrefix)
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(percentEncode(k))
		sb.WriteString(`="`)
		sb.WriteString(percentEncode(oauthParams[k]))
		sb.WriteString(`"`)
	}
	return sb.String()
}

// percentEncode implements RFC 3986 section 2.1 encoding as required by the
// OAuth 1.0a spec: everything except unreserved characters is %XX-escaped,
// with upper-case hex digits. This differs from url.QueryEscape, which emits
// '+' for spaces and leaves more characters bare.
func percentEncode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&0x0f])
		}
	}
	return sb.String()
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
