package assist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcast/internal/query"
	"tabcast/internal/rules"
	"tabcast/pkg/schema"
)

func TestParseConditionsRemoteSuccess(t *testing.T) {
	mock := &MockCompleter{Response: "```json\n[{\"field\":\"PriorityLevel\",\"operator\":\">\",\"value\":3,\"type\":\"numeric\"}]\n```"}
	svc := NewService(mock, nil)

	conds := svc.ParseConditions(context.Background(), "high priority clients", schema.KindClients)
	require.Len(t, conds, 1)
	assert.Equal(t, schema.NumericCondition(schema.FieldPriorityLevel, schema.OpGT, 3), conds[0])
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "high priority clients")
}

func TestParseConditionsFallsBackToLocal(t *testing.T) {
	const q = "all clients with priority level greater than 3"
	mock := &MockCompleter{Err: newAPIError(http.StatusTooManyRequests, "rate limited")}
	svc := NewService(mock, nil)

	got := svc.ParseConditions(context.Background(), q, schema.KindClients)
	assert.Equal(t, query.Parse(q, schema.KindClients), got)
}

func TestParseConditionsRejectsUnknownFields(t *testing.T) {
	// One bad field poisons the whole response; nothing is merged.
	mock := &MockCompleter{Response: `[
		{"field":"PriorityLevel","operator":">","value":3,"type":"numeric"},
		{"field":"FavoriteColor","operator":"=","value":"red","type":"string"}
	]`}
	svc := NewService(mock, nil)

	const q = "priority level greater than 3"
	got := svc.ParseConditions(context.Background(), q, schema.KindClients)
	assert.Equal(t, query.Parse(q, schema.KindClients), got)
}

func TestParseConditionsMalformedJSONFallsBack(t *testing.T) {
	mock := &MockCompleter{Response: "sorry, I cannot help with that"}
	svc := NewService(mock, nil)

	got := svc.ParseConditions(context.Background(), "duration at least 2", schema.KindTasks)
	assert.Equal(t, query.Parse("duration at least 2", schema.KindTasks), got)
}

func TestConvertRuleRemoteSuccess(t *testing.T) {
	mock := &MockCompleter{Response: `{
		"type":"coRun",
		"name":"Co-run: T1 + T2",
		"description":"Tasks T1 and T2 must run together",
		"parameters":{"tasks":["T1","T2"]},
		"confidence":1.4
	}`}
	svc := NewService(mock, nil)

	parsed := svc.ConvertRule(context.Background(), "Tasks T1 and T2 must run together", ruleDataset())
	require.NotNil(t, parsed)
	assert.Equal(t, schema.RuleCoRun, parsed.Type)
	assert.Equal(t, schema.CoRunParams{Tasks: []string{"T1", "T2"}}, parsed.Parameters)
	// Out-of-range confidence from the remote side is clamped.
	assert.Equal(t, 1.0, parsed.Confidence)
}

func TestConvertRuleFallsBackToLocal(t *testing.T) {
	const sentence = "Tasks T1 and T2 must run together in the same phase"
	mock := &MockCompleter{Err: newNetworkError(errors.New("connection refused"))}
	svc := NewService(mock, nil)

	got := svc.ConvertRule(context.Background(), sentence, ruleDataset())
	assert.Equal(t, rules.Convert(sentence, ruleDataset()), got)
}

func TestNilCompleterGoesStraightToLocal(t *testing.T) {
	svc := NewService(nil, nil)
	const q = "workers with load at most 4"
	assert.Equal(t, query.Parse(q, schema.KindWorkers), svc.ParseConditions(context.Background(), q, schema.KindWorkers))
	assert.Nil(t, svc.ConvertRule(context.Background(), "gibberish", ruleDataset()))
}

func ruleDataset() *schema.Dataset {
	tasks := schema.NewCollection(schema.KindTasks)
	for _, id := range []string{"T1", "T2"} {
		tasks.Records = append(tasks.Records, schema.Record{
			schema.FieldTaskID:          schema.Text(id),
			schema.FieldPreferredPhases: schema.Text("[1,2]"),
		})
	}
	return schema.NewDataset(nil, nil, tasks)
}

func TestClientComplete(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n[]\\n```" + `"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: time.Second,
	})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestClientCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{APIKey: "k", BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "prompt")
	var assistErr *Error
	require.ErrorAs(t, err, &assistErr)
	assert.Equal(t, KindAPI, assistErr.Kind)
	assert.Equal(t, http.StatusPaymentRequired, assistErr.Code)
	assert.Contains(t, assistErr.Message, "quota exceeded")
}

func TestClientCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{APIKey: "k", BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "prompt")
	var assistErr *Error
	require.ErrorAs(t, err, &assistErr)
	assert.Equal(t, KindShape, assistErr.Kind)
}

func TestClientConfigValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "http://x", Model: "m"})
	assert.Error(t, err)
	_, err = NewClient(ClientConfig{APIKey: "k", Model: "m"})
	assert.Error(t, err)
	_, err = NewClient(ClientConfig{APIKey: "k", BaseURL: "http://x"})
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
