package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dgallion1/refdocs/internal/docstore"
	"github.com/dgallion1/refdocs/internal/lookup"
	"github.com/dgallion1/refdocs/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const exampleDoc = "## 1. Intro\n...\n## 2. Setup\n...\n### 2.1 Details\n...\n## 3. End"

var testInfo = ServerInfo{Name: "mosaic-mcp-server", Version: "1.0.0"}

func newTestServer() *Server {
	store := docstore.NewMemory(map[string]string{
		"ORG-CLIENTS.md": exampleDoc,
		"HTML.md":        "## 1 Markup\n<b>a & b</b>",
	})
	svc := lookup.NewService(store, nil, nil, lookup.Config{})
	return NewServer(svc, testInfo, nil, nil)
}

type panicLookup struct{}

func (panicLookup) Lookup(ctx context.Context, documentName, sectionRef string) lookup.Result {
	panic("boom")
}

// roundTrip handles body and decodes the encoded response as generic JSON.
func roundTrip(t *testing.T, s *Server, body string) map[string]any {
	t.Helper()
	var req Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	resp := s.Handle(context.Background(), req)
	if resp == nil {
		t.Fatalf("expected response for %s", body)
	}
	var buf bytes.Buffer
	if err := WriteResponse(&buf, resp); err != nil {
		t.Fatalf("write response: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", buf.String(), err)
	}
	return out
}

// toolText extracts the single text block of a tools/call result.
func toolText(t *testing.T, out map[string]any) (map[string]any, bool) {
	t.Helper()
	result, ok := out["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v", out)
	}
	content, _ := result["content"].([]any)
	if len(content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(content))
	}
	block := content[0].(map[string]any)
	if block["type"] != "text" {
		t.Errorf("expected type text, got %v", block["type"])
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(block["text"].(string)), &payload); err != nil {
		t.Fatalf("decode tool text: %v", err)
	}
	isError, present := result["isError"].(bool)
	if !present {
		t.Fatalf("expected isError to be present, got %v", result)
	}
	return payload, isError
}

func TestHandle_Initialize(t *testing.T) {
	out := roundTrip(t, newTestServer(), `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	if out["jsonrpc"] != "2.0" {
		t.Errorf("expected jsonrpc 2.0, got %v", out["jsonrpc"])
	}
	if out["id"] != float64(1) {
		t.Errorf("expected id 1, got %v", out["id"])
	}
	result := out["result"].(map[string]any)
	if result["protocolVersion"] != ProtocolVersion {
		t.Errorf("expected protocolVersion %q, got %v", ProtocolVersion, result["protocolVersion"])
	}
	caps := result["capabilities"].(map[string]any)
	if tools, ok := caps["tools"].(map[string]any); !ok || len(tools) != 0 {
		t.Errorf("expected empty tools capability, got %v", caps["tools"])
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != "mosaic-mcp-server" || info["version"] != "1.0.0" {
		t.Errorf("unexpected serverInfo %v", info)
	}
}

func TestHandle_ToolsList(t *testing.T) {
	out := roundTrip(t, newTestServer(), `{"jsonrpc":"2.0","id":"a","method":"tools/list"}`)

	if out["id"] != "a" {
		t.Errorf("expected string id to be echoed, got %v", out["id"])
	}
	tools := out["result"].(map[string]any)["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	tool := tools[0].(map[string]any)
	if tool["name"] != ToolGetSection {
		t.Errorf("expected tool %q, got %v", ToolGetSection, tool["name"])
	}
	schema := tool["inputSchema"].(map[string]any)
	if schema["type"] != "object" {
		t.Errorf("expected object schema, got %v", schema["type"])
	}
	props := schema["properties"].(map[string]any)
	for _, name := range []string{"file_name", "section_ref"} {
		prop, ok := props[name].(map[string]any)
		if !ok {
			t.Fatalf("missing property %q", name)
		}
		if prop["type"] != "string" {
			t.Errorf("%s: expected string, got %v", name, prop["type"])
		}
	}
	required := schema["required"].([]any)
	if len(required) != 2 || required[0] != "file_name" || required[1] != "section_ref" {
		t.Errorf("unexpected required %v", required)
	}
}

func TestHandle_GetSectionFound(t *testing.T) {
	out := roundTrip(t, newTestServer(), `{"jsonrpc":"2.0","id":2,"method":"tools/call",
		"params":{"name":"get_section","arguments":{"file_name":"ORG-CLIENTS","section_ref":"2"}}}`)

	payload, isError := toolText(t, out)
	if isError {
		t.Errorf("expected isError false")
	}
	want := "## 2. Setup\n...\n### 2.1 Details\n..."
	if payload["content"] != want {
		t.Errorf("expected %q, got %v", want, payload["content"])
	}
}

func TestHandle_GetSectionNotFound(t *testing.T) {
	s := newTestServer()

	out := roundTrip(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call",
		"params":{"name":"get_section","arguments":{"file_name":"ORG-CLIENTS","section_ref":"9"}}}`)
	payload, isError := toolText(t, out)
	if !isError {
		t.Errorf("expected isError true")
	}
	if payload["error"] != "Section '9' not found in 'ORG-CLIENTS.md'." {
		t.Errorf("unexpected error %v", payload["error"])
	}
	if got := payload["available_sections"].([]any); len(got) != 4 {
		t.Errorf("expected 4 sections, got %v", got)
	}

	out = roundTrip(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call",
		"params":{"name":"get_section","arguments":{"file_name":"MISSING","section_ref":"1"}}}`)
	payload, isError = toolText(t, out)
	if !isError {
		t.Errorf("expected isError true")
	}
	files := payload["available_files"].([]any)
	if len(files) != 2 || files[0] != "HTML.md" || files[1] != "ORG-CLIENTS.md" {
		t.Errorf("unexpected available_files %v", files)
	}
}

func TestHandle_GetSectionNoHTMLEscape(t *testing.T) {
	s := newTestServer()
	var req Request
	_ = json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":5,"method":"tools/call",
		"params":{"name":"get_section","arguments":{"file_name":"HTML","section_ref":"1"}}}`), &req)

	var buf bytes.Buffer
	if err := WriteResponse(&buf, s.Handle(context.Background(), req)); err != nil {
		t.Fatalf("write response: %v", err)
	}
	if !strings.Contains(buf.String(), `<b>a & b</b>`) {
		t.Errorf("expected section text without HTML escaping, got %s", buf.String())
	}
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode float64
		wantMsg  string
	}{
		{
			name:     "unknown method",
			body:     `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`,
			wantCode: CodeMethodNotFound,
			wantMsg:  "Method not found: resources/list",
		},
		{
			name:     "unknown tool",
			body:     `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"delete_everything","arguments":{}}}`,
			wantCode: CodeMethodNotFound,
			wantMsg:  "Unknown tool: delete_everything",
		},
		{
			name:     "missing section_ref",
			body:     `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_section","arguments":{"file_name":"ORG-CLIENTS"}}}`,
			wantCode: CodeInvalidParams,
			wantMsg:  "Missing required arguments: file_name and section_ref",
		},
		{
			name:     "empty file_name",
			body:     `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_section","arguments":{"file_name":"","section_ref":"1"}}}`,
			wantCode: CodeInvalidParams,
			wantMsg:  "Missing required arguments: file_name and section_ref",
		},
		{
			name:     "non-string argument",
			body:     `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_section","arguments":{"file_name":"ORG-CLIENTS","section_ref":2}}}`,
			wantCode: CodeInvalidParams,
			wantMsg:  "Missing required arguments: file_name and section_ref",
		},
		{
			name:     "no arguments",
			body:     `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_section"}}`,
			wantCode: CodeInvalidParams,
			wantMsg:  "Missing required arguments: file_name and section_ref",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := roundTrip(t, newTestServer(), tt.body)
			if _, ok := out["result"]; ok {
				t.Errorf("expected no result, got %v", out["result"])
			}
			rpcErr, ok := out["error"].(map[string]any)
			if !ok {
				t.Fatalf("expected error object, got %v", out)
			}
			if rpcErr["code"] != tt.wantCode {
				t.Errorf("expected code %v, got %v", tt.wantCode, rpcErr["code"])
			}
			if rpcErr["message"] != tt.wantMsg {
				t.Errorf("expected %q, got %v", tt.wantMsg, rpcErr["message"])
			}
		})
	}
}

func TestHandle_PanicBecomesInternalError(t *testing.T) {
	s := NewServer(panicLookup{}, testInfo, nil, nil)
	out := roundTrip(t, s, `{"jsonrpc":"2.0","id":7,"method":"tools/call",
		"params":{"name":"get_section","arguments":{"file_name":"A","section_ref":"1"}}}`)

	rpcErr := out["error"].(map[string]any)
	if rpcErr["code"] != float64(CodeInternal) {
		t.Errorf("expected %d, got %v", CodeInternal, rpcErr["code"])
	}
	if rpcErr["message"] != "Internal error: boom" {
		t.Errorf("unexpected message %v", rpcErr["message"])
	}
	if out["id"] != float64(7) {
		t.Errorf("expected id 7, got %v", out["id"])
	}
}

func TestHandle_MissingIDEchoesNull(t *testing.T) {
	out := roundTrip(t, newTestServer(), `{"jsonrpc":"2.0","method":"ping"}`)
	id, present := out["id"]
	if !present || id != nil {
		t.Errorf("expected id null, got %v (present=%v)", id, present)
	}
	if result, ok := out["result"].(map[string]any); !ok || len(result) != 0 {
		t.Errorf("expected empty result, got %v", out["result"])
	}
}

func TestHandle_Notification(t *testing.T) {
	s := newTestServer()
	req := Request{JSONRPC: "2.0", Method: "notifications/initialized"}
	if resp := s.Handle(context.Background(), req); resp != nil {
		t.Errorf("expected no response, got %+v", resp)
	}

	// A notification-style method with an id is still a request.
	req.ID = json.RawMessage(`9`)
	resp := s.Handle(context.Background(), req)
	if resp == nil || resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("expected method not found, got %+v", resp)
	}
}

func TestHandle_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := docstore.NewMemory(map[string]string{"A.md": "## 1 One\nx"})
	s := NewServer(lookup.NewService(store, nil, m, lookup.Config{}), testInfo, nil, m)

	ctx := context.Background()
	s.Handle(ctx, Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/list"})
	s.Handle(ctx, Request{JSONRPC: "2.0", ID: json.RawMessage(`2`), Method: "bogus"})
	s.Handle(ctx, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`3`),
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name":"get_section","arguments":{"file_name":"A","section_ref":"1"}}`),
	})

	if got := testutil.ToFloat64(m.RPCRequestsTotal.WithLabelValues("tools/list", "ok")); got != 1 {
		t.Errorf("tools/list ok: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.RPCRequestsTotal.WithLabelValues("unknown", "method_not_found")); got != 1 {
		t.Errorf("unknown method: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.LookupsTotal.WithLabelValues("found")); got != 1 {
		t.Errorf("lookups found: expected 1, got %v", got)
	}
}
