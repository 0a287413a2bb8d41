package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Op is one of the operations the resource supports.
type Op int

const (
	OpList Op = iota
	OpCreate
	OpUpdateCompletion
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpUpdateCompletion:
		return "update-completion"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// AllowedMethods is advertised in the Allow header of 405 responses.
var AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// opFor is the single dispatch step from HTTP method to Op.
func opFor(method string) (Op, bool) {
	switch method {
	case http.MethodGet:
		return OpList, true
	case http.MethodPost:
		return OpCreate, true
	case http.MethodPut:
		return OpUpdateCompletion, true
	case http.MethodDelete:
		return OpDelete, true
	}
	return 0, false
}

// CreateRequest is the body of a create.
type CreateRequest struct {
	Text string `json:"text"`
}

// UpdateRequest is the body of an update-completion.
type UpdateRequest struct {
	ID        int64 `json:"id"`
	Completed bool  `json:"completed"`
}

// DeleteRequest is the decoded body of a delete. The wire id may be a
// number or a string holding one.
type DeleteRequest struct {
	ID int64
}

var (
	errInvalidID    = errors.New("id is not an integer")
	errIDOutOfRange = errors.New("id out of range")
	errTrailingData = errors.New("decode body: data after the JSON value")
)

// decodeBody parses raw JSON into a generic value and validates it against
// schema. Numbers stay json.Number so large ids survive intact.
func decodeBody(raw []byte, schema *jsonschema.Schema) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errTrailingData
	}
	if err := schema.Validate(v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("body is not an object")
	}
	return obj, nil
}

func (h *Handler) decodeCreate(raw []byte) (CreateRequest, *Error) {
	obj, err := decodeBody(raw, h.schemas.create)
	if err != nil {
		return CreateRequest{}, badRequest(MsgTextRequired, err)
	}
	text, _ := obj["text"].(string)
	return CreateRequest{Text: text}, nil
}

func (h *Handler) decodeUpdate(raw []byte) (UpdateRequest, *Error) {
	obj, err := decodeBody(raw, h.schemas.update)
	if err != nil {
		return UpdateRequest{}, badRequest(MsgInvalidBody, err)
	}
	id, err := parseID(obj["id"])
	if errors.Is(err, errIDOutOfRange) {
		return UpdateRequest{}, notFound(err)
	}
	if err != nil {
		return UpdateRequest{}, badRequest(MsgInvalidBody, err)
	}
	completed, _ := obj["completed"].(bool)
	return UpdateRequest{ID: id, Completed: completed}, nil
}

func (h *Handler) decodeDelete(raw []byte) (DeleteRequest, *Error) {
	obj, err := decodeBody(raw, h.schemas.delete)
	if err != nil {
		return DeleteRequest{}, badRequest(MsgInvalidID, err)
	}
	id, err := parseID(obj["id"])
	if errors.Is(err, errIDOutOfRange) {
		return DeleteRequest{}, notFound(err)
	}
	if err != nil {
		return DeleteRequest{}, badRequest(MsgInvalidID, err)
	}
	return DeleteRequest{ID: id}, nil
}

// parseID accepts a JSON integer or a base-10 integer string. Integers
// beyond int64 cannot name a task and report errIDOutOfRange.
func parseID(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		n, err := strconv.ParseInt(x.String(), 10, 64)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, errIDOutOfRange
		}
		// 2.0 and 1e20 are integers as far as JSON Schema is concerned.
		f, err := strconv.ParseFloat(x.String(), 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, errIDOutOfRange
		}
		if err != nil || f != math.Trunc(f) {
			return 0, errInvalidID
		}
		if math.Abs(f) >= math.MaxInt64 {
			return 0, errIDOutOfRange
		}
		return int64(f), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, errIDOutOfRange
		}
		if err != nil {
			return 0, errInvalidID
		}
		return n, nil
	default:
		return 0, errInvalidID
	}
}
