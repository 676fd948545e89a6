package gstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "skybiz-prod/skybiz.db", ObjectName("skybiz-prod", "/var/lib/skybiz/db/skybiz.db"))
	assert.Equal(t, "skybiz.db", ObjectName("", "skybiz.db"))
}
