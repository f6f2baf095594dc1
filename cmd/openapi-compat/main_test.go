package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseDoc = `
paths:
  /posts:
    get:
      responses:
        "200": {}
    post:
      responses:
        "201": {}
        "400": {}
  /chats/{id}:
    get:
      responses:
        "200": {}
        "404": {}
    parameters: []
`

func TestParseSpec_IgnoresNonOperations(t *testing.T) {
	spec, err := parseSpec([]byte(baseDoc))
	require.NoError(t, err)
	require.Len(t, spec.Paths, 2)
	assert.Len(t, spec.Paths["/chats/{id}"], 1)
	assert.Contains(t, spec.Paths["/posts"]["post"].Responses, "400")
}

func TestParseSpec_RequiresPaths(t *testing.T) {
	_, err := parseSpec([]byte("swagger: \"2.0\"\n"))
	assert.Error(t, err)

	_, err = parseSpec([]byte("paths: 3\n"))
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	base, err := parseSpec([]byte(baseDoc))
	require.NoError(t, err)

	t.Run("identical", func(t *testing.T) {
		assert.Empty(t, compare(base, base))
	})

	t.Run("additions are compatible", func(t *testing.T) {
		rev, err := parseSpec([]byte(baseDoc + `
  /ratings:
    post:
      responses:
        "201": {}
`))
		require.NoError(t, err)
		assert.Empty(t, compare(base, rev))
	})

	t.Run("removals are reported", func(t *testing.T) {
		rev, err := parseSpec([]byte(`
paths:
  /posts:
    get:
      responses:
        "200": {}
    post:
      responses:
        "201": {}
`))
		require.NoError(t, err)
		assert.Equal(t, []string{
			"removed path: /chats/{id}",
			"removed response code: POST /posts -> 400",
		}, compare(base, rev))
	})
}

func TestEmbeddedDocumentCoversRoutes(t *testing.T) {
	raw, err := embeddedYAML()
	require.NoError(t, err)

	spec, err := parseSpec(raw)
	require.NoError(t, err)
	for _, path := range []string{"/posts", "/chats", "/ratings", "/reports/{id}", "/notifications/mark-all"} {
		assert.Contains(t, spec.Paths, path)
	}
}

func TestCheck_AgainstExportedFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "swagger.yaml")
	require.NoError(t, export(out))

	_, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, 0, check(out, ""))
	assert.Equal(t, 2, check("", ""))
}
