// Package uid generates identifiers.
//
// UUID backs record ids and Secret backs bearer secrets; both satisfy
// StringID. Snowflake backs sortable numeric ids through NumberID.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
