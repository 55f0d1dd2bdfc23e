// Package awserr matches AWS API error codes.
package awserr

import (
	"errors"
	"slices"

	"github.com/aws/smithy-go"
)

// HasCode reports whether err carries one of the given AWS API error codes.
func HasCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return slices.Contains(codes, apiErr.ErrorCode())
}
