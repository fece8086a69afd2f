package httpsig

import (
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

const (
	paramKeyID     = "keyid"
	paramAlgorithm = "algorithm"
	paramHeaders   = "headers"
	paramSignature = "signature"
)

// paramOrder is the fixed field order of the Signature parameter list.
var paramOrder = []string{paramKeyID, paramAlgorithm, paramHeaders, paramSignature}

// AuthorizationValue is the structured content of an Authorization (or upload
// signature) header.
type AuthorizationValue struct {
	KeyID     string
	Algorithm Algorithm
	// Headers is the signed header list, in signing order, as declared by the signer.
	Headers []string
	// Signature is the base64 encoded raw signature.
	Signature string
	// BearerToken is the optional access token emitted before the signature.
	BearerToken string
}

// BuildAuthorizationValue assembles an authorization value. It does no cryptography.
func BuildAuthorizationValue(keyID string, alg Algorithm, headers []string, signature string, bearerToken string) AuthorizationValue {
	return AuthorizationValue{
		KeyID:       keyID,
		Algorithm:   alg,
		Headers:     append([]string(nil), headers...),
		Signature:   signature,
		BearerToken: bearerToken,
	}
}

// String renders the header value:
//
//	[Bearer <token>;]Signature keyid="..",algorithm="..",headers="..",signature=".."
//
// String returns "" when the value cannot be encoded, for example a non-ASCII key id.
// Use Format to get the error.
func (a AuthorizationValue) String() string {
	s, err := a.Format()
	if err != nil {
		return ""
	}
	return s
}

// Format renders the header value, failing if a field cannot be carried as a quoted string.
func (a AuthorizationValue) Format() (string, error) {
	values := map[string]string{
		paramKeyID:     a.KeyID,
		paramAlgorithm: string(a.Algorithm),
		paramHeaders:   strings.Join(a.Headers, " "),
		paramSignature: a.Signature,
	}

	parts := make([]string, 0, len(paramOrder))
	for _, name := range paramOrder {
		quoted, err := httpsfv.Marshal(httpsfv.NewItem(values[name]))
		if err != nil {
			return "", fmt.Errorf("unable to encode %s: %w", name, err)
		}
		parts = append(parts, name+"="+quoted)
	}

	var b strings.Builder
	if a.BearerToken != "" {
		b.WriteString(bearerPrefix)
		b.WriteString(a.BearerToken)
		b.WriteByte(';')
	}
	b.WriteString(signatureScheme)
	b.WriteByte(' ')
	b.WriteString(strings.Join(parts, ","))

	return b.String(), nil
}

// SignedHeaderNames returns the headers list lowercased, for completeness checks.
func (a AuthorizationValue) SignedHeaderNames() []string {
	out := make([]string, len(a.Headers))
	for i, h := range a.Headers {
		out[i] = strings.ToLower(h)
	}
	return out
}

// ParseAuthorization parses an Authorization value produced by AuthorizationValue.String
// or by another implementation of the same grammar.
func ParseAuthorization(value string) (*AuthorizationValue, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, &MalformedAuthorizationError{Reason: "header is empty"}
	}

	out := AuthorizationValue{}

	if len(value) > len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		token, rest, ok := strings.Cut(value[len(bearerPrefix):], ";")
		if !ok {
			return nil, &MalformedAuthorizationError{Reason: "bearer token is not followed by a signature"}
		}
		out.BearerToken = strings.TrimSpace(token)
		value = strings.TrimSpace(rest)
	}

	scheme, params, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, signatureScheme) {
		return nil, &MalformedAuthorizationError{Reason: "missing Signature scheme"}
	}

	fields, err := parseParams(strings.TrimSpace(params))
	if err != nil {
		return nil, err
	}

	out.KeyID = fields[paramKeyID]

	for _, required := range []string{paramAlgorithm, paramHeaders, paramSignature} {
		if fields[required] == "" {
			return nil, &MalformedAuthorizationError{Reason: fmt.Sprintf("missing %s field", required)}
		}
	}

	out.Algorithm = Algorithm(fields[paramAlgorithm])
	out.Headers = strings.Fields(fields[paramHeaders])
	out.Signature = fields[paramSignature]

	return &out, nil
}

// parseParams reads the parameter list as a structured field dictionary and falls back
// to a plain comma and equals split for senders that use mixed case names.
func parseParams(params string) (map[string]string, error) {
	if fields, err := parseParamsDictionary(params); err == nil {
		return fields, nil
	}
	return parseParamsLenient(params)
}

func parseParamsDictionary(params string) (map[string]string, error) {
	dict, err := httpsfv.UnmarshalDictionary([]string{params})
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(dict.Names()))
	for _, name := range dict.Names() {
		member, _ := dict.Get(name)
		item, ok := member.(httpsfv.Item)
		if !ok {
			return nil, &MalformedAuthorizationError{Reason: fmt.Sprintf("field %s is not a single value", name)}
		}
		switch v := item.Value.(type) {
		case string:
			fields[name] = v
		case httpsfv.Token:
			fields[name] = string(v)
		default:
			return nil, &MalformedAuthorizationError{Reason: fmt.Sprintf("field %s is not a string", name)}
		}
	}

	return fields, nil
}

func parseParamsLenient(params string) (map[string]string, error) {
	fields := make(map[string]string)
	for _, part := range strings.Split(params, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, &MalformedAuthorizationError{Reason: fmt.Sprintf("field %q has no value", part)}
		}
		fields[strings.ToLower(strings.TrimSpace(name))] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return fields, nil
}
