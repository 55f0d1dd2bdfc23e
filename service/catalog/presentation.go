package catalog

import "strings"

// DefaultListToken receives the rendered items of checks without a dedicated token.
const DefaultListToken = "ITEMS"

// Presentation tells the compiler how a check's items are substituted into its templates.
type Presentation struct {
	ListToken string
	// Fields maps item-template tokens to item fields. Tokens not listed map
	// to their lowercased name.
	Fields map[string]string
}

var presentations = map[CheckType]Presentation{
	MissingTags: {
		ListToken: "MISSING_TAGS_LIST",
		Fields: map[string]string{
			"RESOURCE_TYPE": "resource_type",
			"RESOURCE_ID":   "resource_id",
			"RESOURCE_URL":  "resource_url",
		},
	},
	PublicBuckets: {
		ListToken: "S3_BUCKETS_LIST",
		Fields: map[string]string{
			"BUCKET_NAME": "bucket_name",
			"REASON":      "reasons",
		},
	},
	UnusedEIP: {
		ListToken: "UNUSED_EIPS",
		Fields: map[string]string{
			"REGION":     "region",
			"IP_ADDRESS": "ip_address",
			"TAGS":       "tags",
		},
	},
}

// PresentationFor returns the presentation of a check name.
func PresentationFor(name string) Presentation {
	if p, ok := presentations[CheckType(name)]; ok {
		return p
	}
	return Presentation{ListToken: DefaultListToken}
}

// Field resolves an item-template token to an item field name.
func (p Presentation) Field(token string) string {
	if f, ok := p.Fields[token]; ok {
		return f
	}
	return strings.ToLower(token)
}
