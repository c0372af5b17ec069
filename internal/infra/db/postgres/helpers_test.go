package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "-", stringOrDash(" "))
	assert.Equal(t, "", dashToEmpty(stringOrDash("")))
	assert.Equal(t, "Lion", dashToEmpty(stringOrDash("Lion")))
}

func TestSchemaKeepsLongReportURLs(t *testing.T) {
	require.NotEmpty(t, schema)
	assert.Regexp(t, `report_url\s+TEXT\s+NOT NULL`, schema[0])
	assert.NotRegexp(t, `report_url\s+VARCHAR`, schema[0])
}
