package tools

import (
	"encoding/json"
	"fmt"
	"os"
)

// ExportContext reads the saved context file, or an empty object when none
// exists yet.
func ExportContext(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, nil
		}
		return nil, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("corrupt context file: %w", err)
	}
	return data, nil
}

// ImportContext validates the payload as a JSON object before replacing
// the context file (validate-then-act).
func ImportContext(path string, payload []byte) error {
	var data map[string]interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("invalid context payload: %w", err)
	}

	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, pretty, 0o644)
}
