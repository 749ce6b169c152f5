package handlers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errInvalidBody         = errors.New(ErrMsgInvalidReqBody)
	errInvalidInputData    = errors.New(ErrMsgInvalidInputData)
	errNegativePage        = errors.New(ErrMsgNegativePagination)
	errInvalidStatusFilter = errors.New(ErrMsgInvalidStatusFilter)
)

// requester returns the purchaser identifier, accepting the MIP-003 alias
func (r *StartJobRequest) requester() string {
	if id := strings.TrimSpace(r.RequesterID); id != "" {
		return id
	}
	return strings.TrimSpace(r.IdentifierFromPurchaser)
}

// input normalizes input_data into a key/value mapping.
// A missing input yields a nil map so the service reports it as required.
func (r *StartJobRequest) input() (map[string]interface{}, error) {
	switch data := r.InputData.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return data, nil
	case []interface{}:
		out := make(map[string]interface{}, len(data))
		for i, item := range data {
			pair, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: item %d is not an object", errInvalidInputData, i)
			}
			key, ok := pair["key"].(string)
			if !ok || key == "" {
				return nil, fmt.Errorf("%w: item %d has no key", errInvalidInputData, i)
			}
			out[key] = pair["value"]
		}
		return out, nil
	default:
		return nil, errInvalidInputData
	}
}
