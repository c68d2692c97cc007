package salesforce

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/specialistvlad/soqlgrid/internal/connector"
)

// apiError is one element of a REST error body.
type apiError struct {
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode"`
	Fields    []string `json:"fields,omitempty"`
}

// oauthError is the body of a failed OAuth call.
type oauthError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// responseError turns a non-2xx response body into a *connector.Error.
func responseError(op, target string, status int, body []byte) error {
	e := &connector.Error{Op: op, Target: target, Status: status}

	var list []apiError
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		e.Code = list[0].ErrorCode
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			msgs = append(msgs, item.Message)
		}
		e.Err = errors.New(strings.Join(msgs, "; "))
		return e
	}

	var oauth oauthError
	if err := json.Unmarshal(body, &oauth); err == nil && oauth.Error != "" {
		e.Code = oauth.Error
		e.Err = errors.New(oauth.Description)
		return e
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		text = "empty response body"
	}
	e.Err = errors.New(text)
	return e
}
