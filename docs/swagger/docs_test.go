package swagger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var annotation = regexp.MustCompile(`(?m)^//\s+@(Summary|Description|Router)\s+(.+)$`)

type operation struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// TestDocMatchesHandlerAnnotations fails when a handler annotation changes
// without the document being regenerated.
func TestDocMatchesHandlerAnnotations(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]operation `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	files, err := filepath.Glob("../../internal/*/handler.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	seen := 0
	for _, file := range files {
		src, err := os.ReadFile(file)
		require.NoError(t, err)

		var want operation
		for _, m := range annotation.FindAllStringSubmatch(string(src), -1) {
			value := strings.TrimSpace(m[2])
			switch m[1] {
			case "Summary":
				want.Summary = value
			case "Description":
				want.Description = value
			case "Router":
				// "/api/v1/uploads [get]"
				fields := strings.Fields(value)
				require.Len(t, fields, 2, "%s: %s", file, value)
				path, method := fields[0], strings.Trim(fields[1], "[]")

				got, ok := doc.Paths[path][method]
				if assert.True(t, ok, "%s %s missing from doc", method, path) {
					assert.Equal(t, want, got, "%s %s", method, path)
				}
				want = operation{}
				seen++
			}
		}
	}

	total := 0
	for _, ops := range doc.Paths {
		total += len(ops)
	}
	assert.Equal(t, total, seen, "doc has operations no handler declares")
}
