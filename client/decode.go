package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/kbukum/vimeonet/endpoint"
	verrors "github.com/kbukum/vimeonet/errors"
)

var (
	errEmptyBody    = errors.New("empty response body")
	errInvalidJSON  = errors.New("response body is not valid JSON")
	errNullBody     = errors.New("response body is null")
	errDataRequired = errors.New("data responses decode into []byte, json.RawMessage or string")
)

// decode turns a successful body into T according to shape. With keyPath
// set, only the JSON value at that gjson path is decoded.
func decode[T any](shape endpoint.Shape, keyPath string, body []byte) (T, error) {
	var model T
	switch shape {
	case endpoint.ShapeNone:
		return model, nil
	case endpoint.ShapeData:
		if len(body) == 0 {
			return model, verrors.NewDecodingError(verrors.ResponseDataNotFound, errEmptyBody)
		}
		if !assignRaw(&model, body) {
			return model, verrors.NewDecodingError(verrors.TypeMismatch, fmt.Errorf("%w, not %T", errDataRequired, model))
		}
		return model, nil
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return model, verrors.NewDecodingError(verrors.ResponseDataNotFound, errEmptyBody)
	}
	if !gjson.ValidBytes(body) {
		return model, verrors.NewDecodingError(verrors.MalformedJSON, errInvalidJSON)
	}
	if gjson.ParseBytes(body).Type == gjson.Null {
		return model, verrors.NewDecodingError(verrors.ResponseDataNotFound, errNullBody)
	}
	data := body
	if keyPath != "" {
		res := gjson.GetBytes(body, keyPath)
		if !res.Exists() || res.Type == gjson.Null {
			return model, verrors.NewDecodingError(verrors.ResponseDataNotFound, fmt.Errorf("no value at %q", keyPath))
		}
		data = []byte(res.Raw)
	}
	if assignRaw(&model, data) {
		return model, nil
	}
	if err := json.Unmarshal(data, &model); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return model, verrors.NewDecodingError(verrors.MalformedJSON, err)
		}
		return model, verrors.NewDecodingError(verrors.TypeMismatch, err)
	}
	return model, nil
}

// assignRaw stores data directly when T is a raw byte or string type.
func assignRaw[T any](dst *T, data []byte) bool {
	switch d := any(dst).(type) {
	case *[]byte:
		*d = data
	case *json.RawMessage:
		*d = json.RawMessage(data)
	case *string:
		*d = string(data)
	default:
		return false
	}
	return true
}
