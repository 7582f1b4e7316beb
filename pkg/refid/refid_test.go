package refid_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trimwise/trimwise-api/pkg/refid"
)

func TestNew_Format(t *testing.T) {
	id := refid.New()

	assert.True(t, strings.HasPrefix(id, "TRW-"), "reference id should carry the brand prefix: %s", id)

	parts := strings.Split(id, "-")
	assert.Len(t, parts, 3)
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 4)
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := refid.New()
		assert.False(t, seen[id], "duplicate reference id generated: %s", id)
		seen[id] = true
	}
}
