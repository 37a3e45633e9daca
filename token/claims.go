package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim types written into every access token.
const (
	ClaimSubject = "sub"
	ClaimTokenID = "jti"
	ClaimEmail   = "email"
	ClaimUserID  = "uid"
	ClaimRole    = "role"
)

// reserved claim types are written by the codec itself and cannot be carried
// as ordinary claims.
var reserved = map[string]bool{"exp": true, "iat": true, "nbf": true, "iss": true, "aud": true}

// IsReserved reports whether claimType is a registered claim the codec owns.
func IsReserved(claimType string) bool {
	return reserved[claimType]
}

// Claim is a single claim tuple. A claim set is an ordered slice of these and
// the same Type may appear more than once.
type Claim struct {
	Type  string
	Value string
}

// values returns every value of typ in order.
func values(claims []Claim, typ string) []string {
	var out []string
	for _, c := range claims {
		if c.Type == typ {
			out = append(out, c.Value)
		}
	}
	return out
}

func first(claims []Claim, typ string) string {
	for _, c := range claims {
		if c.Type == typ {
			return c.Value
		}
	}
	return ""
}

// payload is the JWT body. Registered time, issuer and audience claims are
// held in typed fields; everything else stays in Claims in document order.
type payload struct {
	Issuer    string
	Audience  jwt.ClaimStrings
	ExpiresAt *jwt.NumericDate
	IssuedAt  *jwt.NumericDate
	NotBefore *jwt.NumericDate
	Claims    []Claim
}

var _ jwt.Claims = (*payload)(nil)

func (p *payload) GetExpirationTime() (*jwt.NumericDate, error) { return p.ExpiresAt, nil }
func (p *payload) GetIssuedAt() (*jwt.NumericDate, error)       { return p.IssuedAt, nil }
func (p *payload) GetNotBefore() (*jwt.NumericDate, error)      { return p.NotBefore, nil }
func (p *payload) GetIssuer() (string, error)                   { return p.Issuer, nil }
func (p *payload) GetSubject() (string, error)                  { return first(p.Claims, ClaimSubject), nil }
func (p *payload) GetAudience() (jwt.ClaimStrings, error)       { return p.Audience, nil }

// MarshalJSON writes claims in first-occurrence order. Repeated claim types
// collapse into a JSON array under a single key.
func (p *payload) MarshalJSON() ([]byte, error) {
	var order []string
	grouped := make(map[string][]string)
	for _, c := range p.Claims {
		if _, seen := grouped[c.Type]; !seen {
			order = append(order, c.Type)
		}
		grouped[c.Type] = append(grouped[c.Type], c.Value)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	field := func(key string, v interface{}) error {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("claim %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	for _, key := range order {
		vals := grouped[key]
		var v interface{} = vals
		if len(vals) == 1 {
			v = vals[0]
		}
		if err := field(key, v); err != nil {
			return nil, err
		}
	}
	if p.ExpiresAt != nil {
		if err := field("exp", p.ExpiresAt); err != nil {
			return nil, err
		}
	}
	if p.IssuedAt != nil {
		if err := field("iat", p.IssuedAt); err != nil {
			return nil, err
		}
	}
	if p.NotBefore != nil {
		if err := field("nbf", p.NotBefore); err != nil {
			return nil, err
		}
	}
	if p.Issuer != "" {
		if err := field("iss", p.Issuer); err != nil {
			return nil, err
		}
	}
	switch len(p.Audience) {
	case 0:
	case 1:
		if err := field("aud", p.Audience[0]); err != nil {
			return nil, err
		}
	default:
		if err := field("aud", []string(p.Audience)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the body back, keeping non-registered claims in
// document order and expanding arrays into repeated claims.
func (p *payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("token payload is not a JSON object")
	}

	*p = payload{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected payload key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("claim %s: %w", key, err)
		}

		switch key {
		case "iss":
			err = json.Unmarshal(raw, &p.Issuer)
		case "aud":
			err = json.Unmarshal(raw, &p.Audience)
		case "exp":
			p.ExpiresAt, err = numericDate(raw)
		case "iat":
			p.IssuedAt, err = numericDate(raw)
		case "nbf":
			p.NotBefore, err = numericDate(raw)
		default:
			var vals []string
			vals, err = claimValues(raw)
			for _, v := range vals {
				p.Claims = append(p.Claims, Claim{Type: key, Value: v})
			}
		}
		if err != nil {
			return fmt.Errorf("claim %s: %w", key, err)
		}
	}

	_, err = dec.Token()
	return err
}

func numericDate(raw json.RawMessage) (*jwt.NumericDate, error) {
	var d jwt.NumericDate
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func claimValues(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			v, err := scalar(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	v, err := scalar(raw)
	if err != nil {
		return nil, err
	}
	return []string{v}, nil
}

func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	// numbers, booleans and nested objects keep their JSON text
	return string(raw), nil
}

// UnverifiedClaims are read from a token whose signature and expiry were NOT
// checked. They identify who the token claims to be and nothing more.
type UnverifiedClaims struct {
	claims    []Claim
	expiresAt time.Time
}

// Email returns the email claim.
func (u *UnverifiedClaims) Email() string { return first(u.claims, ClaimEmail) }

// Values returns every value of the given claim type.
func (u *UnverifiedClaims) Values(claimType string) []string { return values(u.claims, claimType) }

// Claims returns a copy of the claim sequence.
func (u *UnverifiedClaims) Claims() []Claim { return append([]Claim(nil), u.claims...) }

// ExpiresAt is the exp claim as written, possibly in the past.
func (u *UnverifiedClaims) ExpiresAt() time.Time { return u.expiresAt }

// VerifiedClaims are produced only after signature, issuer, audience and
// expiry checks pass.
type VerifiedClaims struct {
	Subject   string
	TokenID   string
	Email     string
	UserID    string
	Roles     []string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time

	claims []Claim
}

// Claims returns a copy of the full claim sequence.
func (v *VerifiedClaims) Claims() []Claim { return append([]Claim(nil), v.claims...) }

// Values returns every value of the given claim type.
func (v *VerifiedClaims) Values(claimType string) []string { return values(v.claims, claimType) }

// HasRole reports whether role is among the role claims.
func (v *VerifiedClaims) HasRole(role string) bool {
	for _, r := range v.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func newVerifiedClaims(p *payload) *VerifiedClaims {
	vc := &VerifiedClaims{
		Subject:  first(p.Claims, ClaimSubject),
		TokenID:  first(p.Claims, ClaimTokenID),
		Email:    first(p.Claims, ClaimEmail),
		UserID:   first(p.Claims, ClaimUserID),
		Roles:    values(p.Claims, ClaimRole),
		Issuer:   p.Issuer,
		Audience: []string(p.Audience),
		claims:   p.Claims,
	}
	if p.ExpiresAt != nil {
		vc.ExpiresAt = p.ExpiresAt.Time
	}
	return vc
}
