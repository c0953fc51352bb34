package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapdq/internal/state"
	"github.com/leapstack-labs/leapdq/internal/testutil"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/quality"
	"github.com/leapstack-labs/leapdq/pkg/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*Server, *state.SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(filepath.Join(t.TempDir(), "state.db")))
	t.Cleanup(func() { _ = store.Close() })

	age := rule.NewRuleSet("age")
	age.Add(rule.BaseTypeOf(core.TypeLong))
	age.Add(rule.NullPercent("0.0"))
	age.Add(rule.Min("1"))

	status := rule.NewRuleSet("status")
	status.Add(rule.BaseTypeOf(core.TypeString))
	status.Add(rule.OneOf("A", "B", "C"))

	require.NoError(t, store.SaveRuleSets(ctx, "people.csv", []*rule.RuleSet{age, status}))

	srv := New(Config{
		Store:     store,
		Validator: quality.New(),
		Source:    "people.csv",
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, srv.Reload(ctx))
	return srv, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","source":"people.csv","rulesets":2}`, rec.Body.String())
}

func TestListAndGetRuleSets(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/rulesets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sets []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sets))
	assert.Len(t, sets, 2)

	rec = do(t, h, http.MethodGet, "/rulesets/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"status","rules":[{"name":"BaseType","arguments":["String"]},{"name":"OneOf","arguments":["A","B","C"]}]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/rulesets/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpression(t *testing.T) {
	srv, _ := setupServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/rulesets/status/expression", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ColumnValues \"status\" in [\"A\", \"B\", \"C\"]\n", rec.Body.String())
}

func TestCheckValue(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	tests := []struct {
		name  string
		path  string
		body  string
		valid bool
	}{
		{"one of match", "/rulesets/status/check", `{"value":"b"}`, true},
		{"one of miss", "/rulesets/status/check", `{"value":"Z"}`, false},
		{"null status", "/rulesets/status/check", `{"value":null}`, true},
		{"null age", "/rulesets/age/check", `{"value":null}`, false},
		{"missing value is null", "/rulesets/age/check", `{}`, false},
		{"age present", "/rulesets/age/check", `{"value":"0"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var v quality.Verdict
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
			assert.Equal(t, tt.valid, v.Valid)
			if !tt.valid {
				assert.NotEmpty(t, v.Rule)
			}
		})
	}
}

func TestCheckValue_BadBody(t *testing.T) {
	srv, _ := setupServer(t)

	rec := do(t, srv.Handler(), http.MethodPost, "/rulesets/age/check", `{"value":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv.Handler(), http.MethodPost, "/rulesets/nope/check", `{"value":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckRecord(t *testing.T) {
	srv, _ := setupServer(t)

	rec := do(t, srv.Handler(), http.MethodPost, "/rulesets/check", `{"values":{"age":null,"status":"A","extra":"1"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp recordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "age", resp.Failures[0].Column)
	assert.Equal(t, "NullPercent(0.0)", resp.Failures[0].Rule)
	assert.Equal(t, core.SeverityError, resp.Failures[0].Severity)
	assert.Equal(t, []string{"extra"}, resp.Unknown)
}

func TestSourcesAndRuns(t *testing.T) {
	srv, store := setupServer(t)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, "people.csv", "people.csv", false)
	require.NoError(t, err)
	require.NoError(t, store.RecordFailure(ctx, run.ID, quality.Failure{Column: "age", Row: 2, Value: core.Null()}))
	require.NoError(t, store.CompleteRun(ctx, run.ID, &quality.Report{Rows: 3, Failures: 1}, nil))

	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/sources", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"people.csv"`)

	rec = do(t, h, http.MethodGet, "/runs?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), run.ID)
	assert.Contains(t, rec.Body.String(), `"status":"failed"`)

	rec = do(t, h, http.MethodGet, "/runs/"+run.ID+"/failures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"column":"age"`)

	rec = do(t, h, http.MethodGet, "/runs/unknown/failures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestReload_UnknownSource(t *testing.T) {
	_, store := setupServer(t)

	srv := New(Config{Store: store, Source: "other.csv"})
	assert.ErrorIs(t, srv.Reload(context.Background()), state.ErrNotFound)
}
