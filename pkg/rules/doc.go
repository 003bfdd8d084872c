// Package rules compiles the small boolean expressions used by form
// definitions to derive visibility and enablement of fields.
//
// Supported syntax:
//   - truthiness of a field: `model.enabled`
//   - comparisons: `model.mode == "strict"`, `model.count != 3`, `a == b`
//   - composition: `!a`, `a && b`, `a || (b && c)`
//
// Identifiers are compact field locations and may cross arrays
// (`model.rules[].enabled`). Literals are strings (single or double quoted),
// numbers, true/false and null.
package rules
