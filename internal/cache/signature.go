// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"net/url"
	"sort"
	"strings"
)

// credentialParams are never part of a signature so that rotating the API
// key does not orphan cached responses.
var credentialParams = []string{"apikey", "insttoken"}

// Signature is the canonical identity of one API request: the endpoint path
// plus its query parameters with keys and values in sorted order. Operation
// names the logical query the request belongs to; it groups entries for
// ClearOperation and is not part of the identity.
type Signature struct {
	Operation string
	Endpoint  string
	Params    url.Values
}

// NewSignature copies params, drops credentials and sorts repeated values.
func NewSignature(operation, endpoint string, params url.Values) Signature {
	cp := make(url.Values, len(params))
	for k, vs := range params {
		if isCredential(k) {
			continue
		}
		sorted := append([]string(nil), vs...)
		sort.Strings(sorted)
		cp[k] = sorted
	}
	return Signature{Operation: operation, Endpoint: strings.Trim(endpoint, "/"), Params: cp}
}

// String renders the signature as endpoint?k1=v1&k2=v2. url.Values.Encode
// sorts by key, so equal requests always render identically.
func (s Signature) String() string {
	if len(s.Params) == 0 {
		return s.Endpoint
	}
	return s.Endpoint + "?" + s.Params.Encode()
}

func isCredential(key string) bool {
	for _, c := range credentialParams {
		if strings.EqualFold(key, c) {
			return true
		}
	}
	return false
}
