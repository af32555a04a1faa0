package registry

import (
	"bytes"
	"encoding/json"
	_ "embed"
	"fmt"
	"sync"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed install_schema.json
var installSchemaJSON []byte

var compileSchema = sync.OnceValue(func() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(installSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("registry: bad embedded install schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("install_schema.json", doc); err != nil {
		panic(fmt.Sprintf("registry: bad embedded install schema: %v", err))
	}
	return compiler.MustCompile("install_schema.json")
})

// installDoc is the decoded installable-skin description.
type installDoc struct {
	ID      string             `json:"id"`
	Label   string             `json:"label"`
	CSSVars entity.VariableSet `json:"cssVars"`
	Fonts   *manifestFonts     `json:"fonts"`
	Swatch  *entity.Swatch     `json:"swatch"`
	Radius  string             `json:"radius"`
}

// parseInstallData validates raw install input against the schema and the
// semantic minimum (at least one non-empty variable partition), then decodes
// it. Unvalidated maps never travel past this boundary.
func parseInstallData(data []byte) (*installDoc, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidInstallData, err)
	}
	if err := compileSchema().Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstallData, err)
	}

	var doc installDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstallData, err)
	}
	if doc.CSSVars.Empty() {
		return nil, fmt.Errorf("%w: cssVars must have at least one non-empty mode", ErrInvalidInstallData)
	}
	return &doc, nil
}
