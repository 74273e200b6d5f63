package api

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// defaultErrorMessage is reported when the envelope carries no usable entry
// or the entry has no status text.
const defaultErrorMessage = "Unexpected result from API."

// ResultEnvelope is the outer JSON object every console answer is wrapped in.
type ResultEnvelope struct {
	Results []ResultEntry `json:"results"`
}

// ResultEntry is one call outcome inside the envelope. Only the first entry
// is ever consulted; all fields except Status and Code are optional.
type ResultEntry struct {
	Status               string          `json:"status"`
	Code                 int             `json:"code"`
	Result               json.RawMessage `json:"result,omitempty"`
	Suggestions          []string        `json:"suggestions,omitempty"`
	DebugInfo            *DebugInfo      `json:"debug_info,omitempty"`
	IncompleteExpression bool            `json:"incomplete_expression,omitempty"`
}

// outcome is the decoded result of one call: exactly one of success, soft
// failure, or script error. Soft failures carry a reason for logging but are
// surfaced to callers as zero values, not errors.
type outcome struct {
	value       json.RawMessage
	suggestions []string
	soft        bool
	scriptErr   *ScriptError
}

func softFailure() outcome {
	return outcome{soft: true}
}

// decodeExecute classifies the response for an execute-script call.
//
// Non-2xx statuses and undecodable bodies degrade to a soft failure here;
// only an envelope entry with a failure code raises a ScriptError. This is
// deliberately more permissive than decodeAutocomplete.
func (c *ApiClient) decodeExecute(resp *apiResponse) outcome {
	if !resp.Complete {
		return softFailure()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().
			Int("status_code", resp.StatusCode).
			Msg("Unexpected status code")
		return softFailure()
	}

	entry, ok := c.firstEntry(resp.Body)
	if !ok {
		return softFailure()
	}

	if entry.Code >= 200 && entry.Code <= 299 {
		return outcome{value: entry.Result}
	}
	return outcome{scriptErr: translateEntry(entry, true)}
}

// decodeAutocomplete classifies the response for an auto-complete-script
// call. Unlike execute, a non-2xx status raises a ScriptError carrying the
// status code and raw body.
func (c *ApiClient) decodeAutocomplete(resp *apiResponse) outcome {
	if !resp.Complete {
		return softFailure()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fmt.Sprintf("HTTP request failed; Code: %d; Body: %s", resp.StatusCode, resp.Body)
		return outcome{scriptErr: &ScriptError{Message: message}}
	}

	entry, ok := c.firstEntry(resp.Body)
	if !ok {
		return softFailure()
	}

	if entry.Code >= 200 && entry.Code <= 299 {
		return outcome{suggestions: entry.Suggestions}
	}
	return outcome{scriptErr: translateEntry(entry, false)}
}

// firstEntry parses the body as a result envelope and returns its first
// entry. A missing or empty results sequence is tolerated and reported as
// "not ok", never as a crash; entries beyond the first are ignored by
// protocol contract.
func (c *ApiClient) firstEntry(body []byte) (ResultEntry, bool) {
	var envelope ResultEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Warn().
			Str("body", string(body)).
			Err(err).
			Msg("Unable to parse JSON response")
		return ResultEntry{}, false
	}

	if len(envelope.Results) == 0 {
		log.Warn().Msg(defaultErrorMessage)
		return ResultEntry{}, false
	}
	return envelope.Results[0], true
}

// translateEntry turns a failure entry into a ScriptError. Execute errors
// carry the source location and the incomplete-expression flag; autocomplete
// errors carry the message only.
func translateEntry(entry ResultEntry, withDebug bool) *ScriptError {
	message := entry.Status
	if message == "" {
		message = defaultErrorMessage
	}

	scriptErr := &ScriptError{Message: message}
	if !withDebug {
		return scriptErr
	}

	if entry.DebugInfo != nil {
		scriptErr.Debug = *entry.DebugInfo
	}
	scriptErr.IncompleteExpression = entry.IncompleteExpression
	return scriptErr
}
