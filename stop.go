package openai

import (
	"encoding/json"
	"fmt"
)

// StopSequences is the "stop" parameter. One sequence is sent as a JSON
// string, several as an array, and both shapes are accepted when decoding.
type StopSequences []string

func (s StopSequences) MarshalJSON() ([]byte, error) {
	return marshalStringOrArray(s)
}

func (s *StopSequences) UnmarshalJSON(data []byte) error {
	values, err := unmarshalStringOrArray(data)
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	*s = values
	return nil
}

// EmbeddingInput is the "input" of an embeddings call, with the same
// string-or-array encoding as StopSequences.
type EmbeddingInput []string

func (e EmbeddingInput) MarshalJSON() ([]byte, error) {
	return marshalStringOrArray(e)
}

func (e *EmbeddingInput) UnmarshalJSON(data []byte) error {
	values, err := unmarshalStringOrArray(data)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	*e = values
	return nil
}

func marshalStringOrArray(values []string) ([]byte, error) {
	if len(values) == 1 {
		return json.Marshal(values[0])
	}
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalStringOrArray(data []byte) ([]string, error) {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		return []string{single}, nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, fmt.Errorf("expected string or array of strings: %w", err)
	}
	return many, nil
}
