package database

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaIsIdempotent(t *testing.T) {
	ddl := Schema()
	creates := regexp.MustCompile(`(?i)CREATE\s+(TABLE|INDEX)\s+`).FindAllStringIndex(ddl, -1)
	guarded := regexp.MustCompile(`(?i)CREATE\s+(TABLE|INDEX)\s+IF NOT EXISTS`).FindAllStringIndex(ddl, -1)

	assert.NotEmpty(t, creates)
	assert.Equal(t, len(creates), len(guarded), "every CREATE must be guarded")

	for _, table := range []string{"users", "profiles", "skills", "experiences", "education", "media_assets"} {
		assert.True(t, strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}
