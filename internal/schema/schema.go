// internal/schema/schema.go
// Package schema defines the grading verdict contract and validates raw
// backend output against it.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	// ResultPass marks an answer that passed grading.
	ResultPass = "PASS"
	// ResultFail marks an answer that failed grading.
	ResultFail = "FAIL"
)

// Verdict is the structured grading result produced once per answer
// submission. It is immutable once constructed.
type Verdict struct {
	// Result is PASS or FAIL, normalized to upper case on parse.
	Result string `json:"result"`
	// Explanation is a concise rationale for the result.
	Explanation string `json:"explanation"`
	// Answer is the correct answer, independent of what the user submitted.
	Answer string `json:"answer"`
}

// Passed reports whether the verdict is a pass.
func (v Verdict) Passed() bool {
	return v.Result == ResultPass
}

// JSONSchema returns the machine-readable shape descriptor for the verdict.
// Backends that support constrained decoding are handed this schema verbatim;
// it is requested, not enforced, so callers still validate the response.
func JSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"result": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "PASS or FAIL",
			},
			"explanation": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "A concise explanation of why it passed or failed.",
			},
			"answer": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The correct answer to the question, independent of the user's response.",
			},
		},
		"required": []string{"result", "explanation", "answer"},
	}
}

// ValidationError reports why a raw response failed the verdict contract,
// naming each missing or malformed field.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "verdict failed validation: " + strings.Join(e.Problems, "; ")
}

// ParseVerdict validates raw against the verdict schema and constructs a
// Verdict from it. Raw text that is not JSON, or JSON missing any required
// field, yields a *ValidationError; a default-filled verdict is never
// produced.
func ParseVerdict(raw string) (Verdict, error) {
	schemaLoader := gojsonschema.NewGoLoader(JSONSchema())
	documentLoader := gojsonschema.NewStringLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return Verdict{}, &ValidationError{Problems: []string{fmt.Sprintf("response is not valid JSON: %v", err)}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return Verdict{}, &ValidationError{Problems: problems}
	}

	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Verdict{}, &ValidationError{Problems: []string{fmt.Sprintf("decode verdict: %v", err)}}
	}
	v.Result = strings.ToUpper(strings.TrimSpace(v.Result))
	return v, nil
}
