package objectstore

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	t.Run("prefixes with uuid", func(t *testing.T) {
		name := objectName("screenshot.png")
		assert.True(t, strings.HasSuffix(name, "-screenshot.png"))

		prefix := strings.TrimSuffix(name, "-screenshot.png")
		_, err := uuid.Parse(prefix)
		require.NoError(t, err)
	})

	t.Run("strips directories from client names", func(t *testing.T) {
		name := objectName("../../etc/passwd")
		assert.True(t, strings.HasSuffix(name, "-passwd"))
		assert.NotContains(t, name, "/")

		name = objectName(`..\..\evil.png`)
		assert.True(t, strings.HasSuffix(name, "-evil.png"))
	})

	t.Run("empty name gets a placeholder", func(t *testing.T) {
		name := objectName("")
		assert.True(t, strings.HasSuffix(name, "-upload.bin"))
	})

	t.Run("names never collide", func(t *testing.T) {
		assert.NotEqual(t, objectName("a.png"), objectName("a.png"))
	})
}

func TestURI(t *testing.T) {
	assert.Equal(t, "gs://evidence/abc-shot.png", URI("evidence", "abc-shot.png"))
}
