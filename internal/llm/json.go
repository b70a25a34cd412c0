// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// schemaOf reflects a closed, inline JSON schema for strict structured
// output from the type of v.
func schemaOf(v any) any {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r := jsonschema.Reflector{DoNotReference: true}
	return r.Reflect(reflect.New(t).Interface())
}

// DecodeReply decodes a model reply into out. Replies may wrap the object in
// a Markdown fence or surrounding prose, arrive as a JSON string, or be
// slightly malformed.
func DecodeReply(reply string, out any) error {
	body := unfence(strings.TrimSpace(reply))

	var inner string
	if json.Unmarshal([]byte(body), &inner) == nil {
		body = unfence(strings.TrimSpace(inner))
	}
	if json.Unmarshal([]byte(body), out) == nil {
		return nil
	}

	if i, j := strings.IndexByte(body, '{'), strings.LastIndexByte(body, '}'); i > 0 && j > i {
		if json.Unmarshal([]byte(body[i:j+1]), out) == nil {
			return nil
		}
	}

	fixed, err := jsonrepair.JSONRepair(body)
	if err != nil {
		return fmt.Errorf("repairing reply: %w", err)
	}
	if err := json.Unmarshal([]byte(fixed), out); err != nil {
		return fmt.Errorf("decoding reply: %w", err)
	}
	return nil
}

// unfence returns the body of a ``` fence, or s unchanged.
func unfence(s string) string {
	rest, ok := strings.CutPrefix(s, "```")
	if !ok {
		return s
	}
	if _, after, found := strings.Cut(rest, "\n"); found {
		rest = after
	}
	rest, _ = strings.CutSuffix(strings.TrimSpace(rest), "```")
	return strings.TrimSpace(rest)
}
