package camunda

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("rpc error: code = Unavailable desc = connection refused"), true},
		{fmt.Errorf("context deadline exceeded"), true},
		{fmt.Errorf("rpc error: code = PermissionDenied"), false},
		{fmt.Errorf("invalid gateway address"), false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(tt.err))
		})
	}
}
