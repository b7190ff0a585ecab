package wizard

import (
	"fmt"
	"strings"

	"github.com/andreagrandi/conformance-wizard/internal/conformance"
)

// Field identifies one entry of the configuration record.
type Field int

const (
	FieldSigningPrivate Field = iota + 1
	FieldSigningPublic
	FieldTransportPrivate
	FieldTransportPublic
	FieldClientID
	FieldClientSecret
	FieldTokenEndpoint
	FieldXFapiFinancialID
	FieldRedirectURL
)

type fieldDefinition struct {
	key       string
	label     string
	extension string
	get       func(conformance.Configuration) string
	set       func(*conformance.Configuration, string)
}

var fieldDefinitions = map[Field]fieldDefinition{
	FieldSigningPrivate: {
		key:       "signing_private",
		label:     "Signing Private Certificate (.key)",
		extension: ".key",
		get:       func(c conformance.Configuration) string { return c.SigningPrivate },
		set:       func(c *conformance.Configuration, v string) { c.SigningPrivate = v },
	},
	FieldSigningPublic: {
		key:       "signing_public",
		label:     "Signing Public Certificate (.pem)",
		extension: ".pem",
		get:       func(c conformance.Configuration) string { return c.SigningPublic },
		set:       func(c *conformance.Configuration, v string) { c.SigningPublic = v },
	},
	FieldTransportPrivate: {
		key:       "transport_private",
		label:     "Transport Private Certificate (.key)",
		extension: ".key",
		get:       func(c conformance.Configuration) string { return c.TransportPrivate },
		set:       func(c *conformance.Configuration, v string) { c.TransportPrivate = v },
	},
	FieldTransportPublic: {
		key:       "transport_public",
		label:     "Transport Public Certificate (.pem)",
		extension: ".pem",
		get:       func(c conformance.Configuration) string { return c.TransportPublic },
		set:       func(c *conformance.Configuration, v string) { c.TransportPublic = v },
	},
	FieldClientID: {
		key:   "client_id",
		label: "Client ID",
		get:   func(c conformance.Configuration) string { return c.ClientID },
		set:   func(c *conformance.Configuration, v string) { c.ClientID = v },
	},
	FieldClientSecret: {
		key:   "client_secret",
		label: "Client Secret",
		get:   func(c conformance.Configuration) string { return c.ClientSecret },
		set:   func(c *conformance.Configuration, v string) { c.ClientSecret = v },
	},
	FieldTokenEndpoint: {
		key:   "token_endpoint",
		label: "Token Endpoint",
		get:   func(c conformance.Configuration) string { return c.TokenEndpoint },
		set:   func(c *conformance.Configuration, v string) { c.TokenEndpoint = v },
	},
	FieldXFapiFinancialID: {
		key:   "x_fapi_financial_id",
		label: "x-fapi-financial-id",
		get:   func(c conformance.Configuration) string { return c.XFapiFinancialID },
		set:   func(c *conformance.Configuration, v string) { c.XFapiFinancialID = v },
	},
	FieldRedirectURL: {
		key:   "redirect_url",
		label: "Redirect URL",
		get:   func(c conformance.Configuration) string { return c.RedirectURL },
		set:   func(c *conformance.Configuration, v string) { c.RedirectURL = v },
	},
}

// CertificateFields are the key material fields, in validation order.
var CertificateFields = []Field{
	FieldSigningPrivate,
	FieldSigningPublic,
	FieldTransportPrivate,
	FieldTransportPublic,
}

// ClientFields are the OAuth client fields, in validation order.
var ClientFields = []Field{
	FieldClientID,
	FieldClientSecret,
	FieldTokenEndpoint,
	FieldXFapiFinancialID,
}

// RequiredFields returns the fields that must be non-empty before the
// configuration is sent for remote validation, in reporting order.
func RequiredFields() []Field {
	fields := make([]Field, 0, len(CertificateFields)+len(ClientFields))
	fields = append(fields, CertificateFields...)
	fields = append(fields, ClientFields...)

	return fields
}

// AllFields returns every configuration field.
func AllFields() []Field {
	return append(RequiredFields(), FieldRedirectURL)
}

// Key returns the JSON key of the field.
func (f Field) Key() string {
	return fieldDefinitions[f].key
}

// Label returns the human readable name of the field.
func (f Field) Label() string {
	return fieldDefinitions[f].label
}

// Extension returns the file extension expected for key material, or "" for
// fields that are not read from files.
func (f Field) Extension() string {
	return fieldDefinitions[f].extension
}

// IsCertificate reports whether the field holds key material.
func (f Field) IsCertificate() bool {
	return fieldDefinitions[f].extension != ""
}

// EmptyMessage is the validation message reported when the field is blank.
func (f Field) EmptyMessage() string {
	return f.Label() + " empty"
}

// Value reads the field from a configuration.
func (f Field) Value(cfg conformance.Configuration) string {
	def, ok := fieldDefinitions[f]
	if !ok {
		return ""
	}

	return def.get(cfg)
}

func (f Field) String() string {
	if def, ok := fieldDefinitions[f]; ok {
		return def.key
	}

	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField resolves a JSON key such as "client_id" into a Field.
func ParseField(key string) (Field, error) {
	trimmed := strings.ToLower(strings.TrimSpace(key))
	for _, field := range AllFields() {
		if field.Key() == trimmed {
			return field, nil
		}
	}

	return 0, fmt.Errorf("unknown configuration field %q", key)
}
