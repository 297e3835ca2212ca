package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs converts model output into T. Scalars (string, bool, ints,
// uints, floats) are parsed directly; everything else is decoded as JSON.
// Markdown code fences around the JSON are removed, and malformed JSON is
// passed through jsonrepair before a second attempt.
//
//	type Answer struct {
//	    City string `json:"city"`
//	}
//	answer, err := ParseStringAs[Answer]("```json\n{city: 'Rome'}\n```")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		target.SetString(content)
		return result, nil

	case reflect.Bool:
		value, err := strconv.ParseBool(strings.TrimSpace(content))
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		target.SetBool(value)
		return result, nil

	case reflect.Float32, reflect.Float64:
		value, err := strconv.ParseFloat(strings.TrimSpace(content), target.Type().Bits())
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		target.SetFloat(value)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value, err := strconv.ParseInt(strings.TrimSpace(content), 10, target.Type().Bits())
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		target.SetInt(value)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value, err := strconv.ParseUint(strings.TrimSpace(content), 10, target.Type().Bits())
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		target.SetUint(value)
		return result, nil
	}

	payload := stripCodeFence(content)
	if err := json.Unmarshal([]byte(payload), &result); err == nil {
		return result, nil
	} else {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil {
			return result, fmt.Errorf("failed to unmarshal content as %T: %w (repair failed: %v)", result, err, repairErr)
		}
		var retry T
		if err := json.Unmarshal([]byte(repaired), &retry); err != nil {
			return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", result, err, TruncateStringDefault(repaired))
		}
		return retry, nil
	}
}

// stripCodeFence removes a surrounding ```lang ... ``` block, which chat
// models often wrap JSON answers in.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return trimmed
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "```"), "```")
	if newline := strings.IndexByte(inner, '\n'); newline >= 0 {
		inner = inner[newline+1:]
	}
	return strings.TrimSpace(inner)
}
