package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformedReply is wrapped by ParseReply when the reply holds no JSON object.
var ErrMalformedReply = errors.New("malformed provider reply")

// CleanJSONBlock removes markdown code fences around a JSON reply.
// Models often wrap JSON in ```json ... ``` even when told not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Skip a language tag on the fence line.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// ParseReply strips fences from a provider reply and returns it as a parsed
// JSON object. Text around the outermost braces is tolerated.
func ParseReply(raw string) (gjson.Result, error) {
	text := CleanJSONBlock(raw)
	if !gjson.Valid(text) {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return gjson.Result{}, fmt.Errorf("%w: no JSON object found", ErrMalformedReply)
		}
		text = text[start : end+1]
		if !gjson.Valid(text) {
			return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrMalformedReply)
		}
	}
	res := gjson.Parse(text)
	if !res.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: top-level value is %s, want object", ErrMalformedReply, res.Type)
	}
	return res, nil
}

// Strings returns the string elements of a JSON array field, or an empty slice.
func Strings(res gjson.Result, path string) []string {
	out := []string{}
	for _, v := range res.Get(path).Array() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
