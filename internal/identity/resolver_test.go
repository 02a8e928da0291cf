package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/initify/identity-context/internal/falcon"
)

type fakeGraph struct {
	resp  *falcon.Response
	err   error
	calls int
	query string
	vars  map[string]any
}

func (f *fakeGraph) GraphQL(_ context.Context, query string, variables map[string]any) (*falcon.Response, error) {
	f.calls++
	f.query = query
	f.vars = variables
	return f.resp, f.err
}

func ok(data string) *falcon.Response {
	return &falcon.Response{StatusCode: http.StatusOK, Body: falcon.ResponseBody{Data: json.RawMessage(data)}}
}

func str(s string) *string { return &s }

func TestResolveActiveDirectoryAccount(t *testing.T) {
	g := &fakeGraph{resp: ok(`{"entities":{"nodes":[{"entityId":"e1","accounts":[{"objectSid":"S-1-5-1","domain":"corp.local"}]}]}}`)}
	r := NewResolver(g, zaptest.NewLogger(t))

	got, err := r.Resolve(context.Background(), "e1")
	require.NoError(t, err)

	want := []LinkedEntity{{EntitySID: str("S-1-5-1"), EntityID: "e1", Domain: str("corp.local")}}
	if diff := cmp.Diff(want, got.LinkedEntities); diff != "" {
		t.Fatalf("linked entities mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, LinkedAccountsQuery, g.query)
	assert.Equal(t, map[string]any{"entityId": "e1"}, g.vars)
}

func TestResolveNonActiveDirectoryAccountYieldsNullRecord(t *testing.T) {
	g := &fakeGraph{resp: ok(`{"entities":{"nodes":[{"entityId":"e2","accounts":[{}]}]}}`)}
	got, err := NewResolver(g, nil).Resolve(context.Background(), "e2")
	require.NoError(t, err)
	require.Len(t, got.LinkedEntities, 1)

	rec := got.LinkedEntities[0]
	assert.Nil(t, rec.EntitySID)
	assert.Nil(t, rec.Domain)
	assert.Equal(t, "e2", rec.EntityID)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"EntitySid":null,"EntityId":"e2","Domain":null}`, string(b))
}

func TestResolvePreservesNodeThenAccountOrder(t *testing.T) {
	data := `{"entities":{"nodes":[
		{"entityId":"a","accounts":[{"objectSid":"S-a-1","domain":"d1"},{},{"objectSid":"S-a-3","domain":"d3"}]},
		{"entityId":"b","accounts":[]},
		{"entityId":"c","accounts":[{"objectSid":"S-c-1","domain":"d1"}]}
	]}}`
	g := &fakeGraph{resp: ok(data)}
	r := NewResolver(g, nil)

	got, err := r.Resolve(context.Background(), "a")
	require.NoError(t, err)

	want := []LinkedEntity{
		{EntitySID: str("S-a-1"), EntityID: "a", Domain: str("d1")},
		{EntityID: "a"},
		{EntitySID: str("S-a-3"), EntityID: "a", Domain: str("d3")},
		{EntitySID: str("S-c-1"), EntityID: "c", Domain: str("d1")},
	}
	if diff := cmp.Diff(want, got.LinkedEntities); diff != "" {
		t.Fatalf("linked entities mismatch (-want +got):\n%s", diff)
	}

	again, err := r.Resolve(context.Background(), "a")
	require.NoError(t, err)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("repeated resolve differs (-first +second):\n%s", diff)
	}
}

func TestResolveZeroNodes(t *testing.T) {
	g := &fakeGraph{resp: ok(`{"entities":{"nodes":[]}}`)}
	got, err := NewResolver(g, nil).Resolve(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, got.LinkedEntities)
	assert.Empty(t, got.LinkedEntities)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"linked_entities":[]}`, string(b))
}

func TestResolveUpstreamError(t *testing.T) {
	g := &fakeGraph{resp: &falcon.Response{
		StatusCode: http.StatusForbidden,
		Body:       falcon.ResponseBody{Errors: []falcon.APIError{{Code: 403, Message: "forbidden"}}},
	}}
	_, err := NewResolver(g, nil).Resolve(context.Background(), "e1")
	require.Error(t, err)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindUpstream, e.Kind)
	assert.Equal(t, http.StatusForbidden, e.Code)
	assert.Equal(t, "forbidden", e.Message)
}

func TestResolveInternalErrors(t *testing.T) {
	tests := []struct {
		name     string
		entityID string
		graph    *fakeGraph
		calls    int
	}{
		{
			name:     "upstream error list empty",
			entityID: "e1",
			graph:    &fakeGraph{resp: &falcon.Response{StatusCode: http.StatusForbidden}},
			calls:    1,
		},
		{
			name:     "transport failure",
			entityID: "e1",
			graph:    &fakeGraph{err: errors.New("dial tcp: connection refused")},
			calls:    1,
		},
		{
			name:     "data null with graphql errors",
			entityID: "e1",
			graph: &fakeGraph{resp: &falcon.Response{
				StatusCode: http.StatusOK,
				Body:       falcon.ResponseBody{Data: json.RawMessage(`null`), Errors: []falcon.APIError{{Message: "bad uuid"}}},
			}},
			calls: 1,
		},
		{name: "entities missing", entityID: "e1", graph: &fakeGraph{resp: ok(`{}`)}, calls: 1},
		{name: "nodes missing", entityID: "e1", graph: &fakeGraph{resp: ok(`{"entities":{}}`)}, calls: 1},
		{name: "accounts missing", entityID: "e1", graph: &fakeGraph{resp: ok(`{"entities":{"nodes":[{"entityId":"e1"}]}}`)}, calls: 1},
		{name: "nodes wrong type", entityID: "e1", graph: &fakeGraph{resp: ok(`{"entities":{"nodes":"x"}}`)}, calls: 1},
		{name: "null account entry", entityID: "e1", graph: &fakeGraph{resp: ok(`{"entities":{"nodes":[{"entityId":"e1","accounts":[{"objectSid":"S-1","domain":"d"},null]}]}}`)}, calls: 1},
		{name: "nil response without error", entityID: "e1", graph: &fakeGraph{}, calls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResolver(tt.graph, zaptest.NewLogger(t)).Resolve(context.Background(), tt.entityID)
			assert.Nil(t, got)
			require.Error(t, err)

			e := AsError(err)
			assert.Equal(t, KindInternal, e.Kind)
			assert.Equal(t, http.StatusInternalServerError, e.Code)
			assert.Contains(t, e.Message, "Internal server error: ")
			assert.Equal(t, tt.calls, tt.graph.calls)
		})
	}
}

func TestResolveBlankEntityIDReachesUpstream(t *testing.T) {
	for _, id := range []string{"", "  ", "not-a-uuid"} {
		g := &fakeGraph{resp: &falcon.Response{
			StatusCode: http.StatusBadRequest,
			Body:       falcon.ResponseBody{Errors: []falcon.APIError{{Message: "Variable \"$entityId\" got invalid value"}}},
		}}
		_, err := NewResolver(g, zaptest.NewLogger(t)).Resolve(context.Background(), id)
		require.Error(t, err, id)

		e := AsError(err)
		assert.Equal(t, KindUpstream, e.Kind, id)
		assert.Equal(t, http.StatusBadRequest, e.Code, id)
		assert.Equal(t, "Variable \"$entityId\" got invalid value", e.Message, id)
		assert.Equal(t, 1, g.calls, id)
		assert.Equal(t, map[string]any{"entityId": id}, g.vars, id)
	}
}

func TestAsErrorWrapsForeignErrors(t *testing.T) {
	e := AsError(errors.New("boom"))
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "Internal server error: boom", e.Message)

	up := UpstreamError(429, "slow down")
	assert.Same(t, up, AsError(up))
}
