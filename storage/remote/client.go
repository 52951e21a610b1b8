// Package remote persists records through the records HTTP API of another process.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
)

// Backend calls the /v1 collection endpoints with a bearer token.
type Backend struct {
	baseURL string
	token   string
	client  *http.Client
	schemas map[string]record.Schema
}

func NewBackend(baseURL, token string, timeout time.Duration, schemas ...record.Schema) *Backend {
	b := &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		schemas: make(map[string]record.Schema, len(schemas)),
	}
	for _, s := range schemas {
		b.schemas[s.Collection] = s
	}
	return b
}

func NewBackendFromConfig(conf *core.Config, schemas ...record.Schema) *Backend {
	return NewBackend(conf.API.BaseURL, conf.API.Token, conf.API.Timeout, schemas...)
}

func (b *Backend) path(collection string, id ...record.ID) string {
	p := b.baseURL + "/v1/" + url.PathEscape(collection)
	if len(id) > 0 {
		p += "/" + id[0].String()
	}
	return p
}

func (b *Backend) do(ctx context.Context, method, target string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, target)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}

// decodeError maps an API error response back to the error kinds of package core.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return core.ErrNotFound
	case http.StatusBadRequest:
		var fieldErrs map[string]string
		if err := json.Unmarshal(data, &fieldErrs); err == nil && len(fieldErrs) > 0 {
			if msg, ok := fieldErrs["error"]; ok && len(fieldErrs) == 1 {
				return core.NewValidationError(errors.New(msg))
			}
			flds := make([]core.FieldError, 0, len(fieldErrs))
			for _, name := range sortedKeys(fieldErrs) {
				flds = append(flds, core.FieldError{Field: name, Error: fieldErrs[name]})
			}
			return core.NewValidationError(nil, flds...)
		}
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return errors.Errorf("remote: %d %s", resp.StatusCode, body.Error)
	}
	return errors.Errorf("remote: %s", resp.Status)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Backend) Select(ctx context.Context, collection string, orderBy []core.DBOrdering) ([]record.Record, error) {
	u := b.path(collection)
	if len(orderBy) > 0 {
		u += "?" + url.Values{"ordering": {core.FormatOrdering(orderBy)}}.Encode()
	}

	var recs []record.Record
	if err := b.do(ctx, http.MethodGet, u, nil, &recs); err != nil {
		return nil, err
	}
	if s, ok := b.schemas[collection]; ok {
		for i := range recs {
			recs[i].Values = s.Normalize(recs[i].Values)
		}
	}
	return recs, nil
}

func (b *Backend) Insert(ctx context.Context, collection string, values record.Values) error {
	return b.do(ctx, http.MethodPost, b.path(collection), values, nil)
}

func (b *Backend) Update(ctx context.Context, collection string, values record.Values, id record.ID) error {
	return b.do(ctx, http.MethodPatch, b.path(collection, id), values, nil)
}

func (b *Backend) Delete(ctx context.Context, collection string, id record.ID) error {
	return b.do(ctx, http.MethodDelete, b.path(collection, id), nil, nil)
}

func (b *Backend) String() string {
	return fmt.Sprintf("remote(%s)", b.baseURL)
}
