package awserr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "NoSuchEntity", Message: "no policy"}
	wrapped := fmt.Errorf("get password policy: %w", apiErr)

	assert.True(t, HasCode(wrapped, "NoSuchEntity"))
	assert.True(t, HasCode(apiErr, "AccessDenied", "NoSuchEntity"))
	assert.False(t, HasCode(wrapped, "AccessDenied"))
	assert.False(t, HasCode(errors.New("NoSuchEntity"), "NoSuchEntity"))
	assert.False(t, HasCode(nil, "NoSuchEntity"))
}
