package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const firestoreBaseURL = "https://firestore.googleapis.com"

// FirestoreConfig reúne as credenciais públicas do projeto Firebase.
type FirestoreConfig struct {
	APIKey    string
	ProjectID string
	BaseURL   string
	Timeout   time.Duration
}

// FirestoreStore fala com a API REST do Firestore.
type FirestoreStore struct {
	client    *resty.Client
	apiKey    string
	projectID string
}

// NewFirestoreStore valida a configuração e prepara o cliente HTTP.
func NewFirestoreStore(cfg FirestoreConfig) (*FirestoreStore, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("firestore: api key ausente")
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firestore: project id ausente")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = firestoreBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &FirestoreStore{client: client, apiKey: cfg.APIKey, projectID: cfg.ProjectID}, nil
}

type firestoreDocument struct {
	Name       string                    `json:"name,omitempty"`
	Fields     map[string]firestoreValue `json:"fields"`
	UpdateTime string                    `json:"updateTime,omitempty"`
}

type firestoreError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (s *FirestoreStore) documentName(collection, document string) string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents/%s/%s",
		s.projectID, url.PathEscape(collection), url.PathEscape(document))
}

func (s *FirestoreStore) Get(ctx context.Context, collection, document string) (map[string]any, bool, error) {
	var doc firestoreDocument
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.apiKey).
		SetResult(&doc).
		Get("/v1/" + s.documentName(collection, document))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrOffline, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, false, nil
	}
	if err := firestoreStatusError(resp); err != nil {
		return nil, false, err
	}

	fields := make(map[string]any, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		fields[k] = v.decode()
	}
	if _, ok := fields[FieldAtualizadoEm]; !ok && doc.UpdateTime != "" {
		fields[FieldAtualizadoEm] = doc.UpdateTime
	}
	return fields, true, nil
}

// Merge envia um commit com updateMask dos campos gravados, o que preserva os
// demais campos do documento, e carimba atualizadoEm com o horário do servidor.
func (s *FirestoreStore) Merge(ctx context.Context, collection, document string, fields map[string]any) error {
	delete(fields, FieldAtualizadoEm)

	encoded := make(map[string]firestoreValue, len(fields))
	paths := make([]string, 0, len(fields))
	for k, v := range fields {
		encoded[k] = encodeFirestore(v)
		paths = append(paths, k)
	}
	sort.Strings(paths)

	body := map[string]any{
		"writes": []any{
			map[string]any{
				"update": firestoreDocument{
					Name:   s.documentName(collection, document),
					Fields: encoded,
				},
				"updateMask": map[string]any{"fieldPaths": paths},
				"updateTransforms": []any{
					map[string]any{"fieldPath": FieldAtualizadoEm, "setToServerValue": "REQUEST_TIME"},
				},
			},
		},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.apiKey).
		SetBody(body).
		Post(fmt.Sprintf("/v1/projects/%s/databases/(default)/documents:commit", s.projectID))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	return firestoreStatusError(resp)
}

// Ping considera o remoto alcançável sempre que há resposta HTTP.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.apiKey).
		Get("/v1/projects/" + s.projectID + "/databases/(default)/documents/" + DefaultCollection)
	return err
}

func firestoreStatusError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	var body firestoreError
	_ = json.Unmarshal(resp.Body(), &body)
	msg := strings.TrimSpace(body.Error.Message)
	if msg == "" {
		msg = resp.Status()
	}
	if resp.StatusCode() == http.StatusForbidden || resp.StatusCode() == http.StatusUnauthorized || body.Error.Status == "PERMISSION_DENIED" {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
	}
	if resp.StatusCode() == http.StatusServiceUnavailable || body.Error.Status == "UNAVAILABLE" {
		return fmt.Errorf("%w: %s", ErrOffline, msg)
	}
	return fmt.Errorf("firestore: %d %s", resp.StatusCode(), msg)
}

// firestoreValue segue o formato tipado da API REST.
type firestoreValue struct {
	NullValue      *string         `json:"nullValue,omitempty"`
	BooleanValue   *bool           `json:"booleanValue,omitempty"`
	IntegerValue   *string         `json:"integerValue,omitempty"`
	DoubleValue    *float64        `json:"doubleValue,omitempty"`
	StringValue    *string         `json:"stringValue,omitempty"`
	TimestampValue *string         `json:"timestampValue,omitempty"`
	ArrayValue     *firestoreArray `json:"arrayValue,omitempty"`
	MapValue       *firestoreMap   `json:"mapValue,omitempty"`
}

type firestoreArray struct {
	Values []firestoreValue `json:"values,omitempty"`
}

type firestoreMap struct {
	Fields map[string]firestoreValue `json:"fields,omitempty"`
}

func encodeFirestore(v any) firestoreValue {
	switch val := v.(type) {
	case nil:
		null := "NULL_VALUE"
		return firestoreValue{NullValue: &null}
	case bool:
		return firestoreValue{BooleanValue: &val}
	case json.Number:
		if _, err := strconv.ParseInt(val.String(), 10, 64); err == nil {
			s := val.String()
			return firestoreValue{IntegerValue: &s}
		}
		f, _ := val.Float64()
		return firestoreValue{DoubleValue: &f}
	case float64:
		return firestoreValue{DoubleValue: &val}
	case int:
		s := strconv.Itoa(val)
		return firestoreValue{IntegerValue: &s}
	case string:
		return firestoreValue{StringValue: &val}
	case []any:
		arr := &firestoreArray{Values: make([]firestoreValue, 0, len(val))}
		for _, item := range val {
			arr.Values = append(arr.Values, encodeFirestore(item))
		}
		return firestoreValue{ArrayValue: arr}
	case map[string]any:
		m := &firestoreMap{Fields: make(map[string]firestoreValue, len(val))}
		for k, item := range val {
			m.Fields[k] = encodeFirestore(item)
		}
		return firestoreValue{MapValue: m}
	}
	s := fmt.Sprint(v)
	return firestoreValue{StringValue: &s}
}

func (v firestoreValue) decode() any {
	switch {
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.IntegerValue != nil:
		f, err := strconv.ParseFloat(*v.IntegerValue, 64)
		if err != nil {
			return nil
		}
		return f
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.StringValue != nil:
		return *v.StringValue
	case v.TimestampValue != nil:
		return *v.TimestampValue
	case v.ArrayValue != nil:
		out := make([]any, 0, len(v.ArrayValue.Values))
		for _, item := range v.ArrayValue.Values {
			out = append(out, item.decode())
		}
		return out
	case v.MapValue != nil:
		out := make(map[string]any, len(v.MapValue.Fields))
		for k, item := range v.MapValue.Fields {
			out[k] = item.decode()
		}
		return out
	}
	return nil
}
