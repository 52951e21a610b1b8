package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/masomo-records/apps/api/echo"
	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/resource"
	"github.com/trezcool/masomo-records/storage/database/inmem"
	"github.com/trezcool/masomo-records/tests"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newTestConfig(auth bool) *core.Config {
	conf := &core.Config{
		Env:       "TEST",
		AppName:   "Masomo Records",
		TestMode:  true,
		SecretKey: "secret",
	}
	conf.Server.DisableReqLogs = true
	conf.Server.AuthEnabled = auth
	conf.Server.JWTExpirationDelta = time.Hour
	return conf
}

// setup returns a server over a single in-memory backend shared by every collection.
func setup(t *testing.T, conf *core.Config) (*Server, *inmemdb.Backend) {
	t.Helper()

	validate, translator := core.NewValidator()
	backend := inmemdb.NewBackend(inmemdb.Open())

	var services []*resource.Service
	for _, s := range academics.Schemas() {
		services = append(services, resource.NewService(s, backend, validate, translator))
	}

	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testutil.NewLogger(),
		Services:   services,
		Validate:   validate,
		Translator: translator,
	})
	t.Cleanup(func() { _ = srv.Close() })
	return srv, backend
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config) string {
	token, err := GenerateToken(conf, NewClaims(conf, "registrar", "Registrar"))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		assert.Empty(t, rec.Body.Bytes())
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
