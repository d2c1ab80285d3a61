package service

import (
	"fmt"
	"strings"

	"github.com/dom/game-catalog/internal/document"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

// installerSchema only checks the overall shape of a script. Runners
// validate the steps themselves.
const installerSchemaJSON = `{
  "type": "object",
  "properties": {
    "files":     {"type": "array"},
    "installer": {"type": "array"},
    "game":      {"type": "object"},
    "system":    {"type": "object"},
    "requires":  {"type": "string"}
  }
}`

var installerSchema *gojsonschema.Schema

func init() {
	var err error
	installerSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(installerSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("installer schema: %v", err))
	}
}

// ValidateInstallerContent rejects scripts that are not a YAML mapping, or a
// list holding exactly one mapping, and mappings whose well-known sections
// have the wrong type.
func ValidateInstallerContent(content string) error {
	v, err := document.Parse([]byte(content))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInstallerContent, err)
	}
	if items, ok := v.AsList(); ok {
		if len(items) != 1 {
			return fmt.Errorf("%w: a list script must hold exactly one mapping", domain.ErrInvalidInstallerContent)
		}
		v = items[0]
	}
	m, ok := v.AsMap()
	if !ok {
		return fmt.Errorf("%w: script must be a mapping, got %s", domain.ErrInvalidInstallerContent, v.Kind())
	}

	result, err := installerSchema.Validate(gojsonschema.NewGoLoader(m.Interface()))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInstallerContent, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidInstallerContent, strings.Join(problems, "; "))
	}
	return nil
}
