package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed bank.schema.json
var bankSchemaJSON []byte

const bankSchemaURL = "schema://bank.json"

var compiledBankSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(bankSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse bank schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(bankSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add bank schema: %w", err)
	}
	return c.Compile(bankSchemaURL)
})

// validateBank checks the shape of a bank document: either a bare array of
// questions or a wrong-question book carrying them under "questions".
func validateBank(raw []byte) error {
	schema, err := compiledBankSchema()
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
