package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/refdocs/internal/lookup"
	"github.com/dgallion1/refdocs/internal/metrics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Method is one of the closed set of supported JSON-RPC methods.
type Method string

const (
	MethodInitialize Method = "initialize"
	MethodToolsList  Method = "tools/list"
	MethodToolsCall  Method = "tools/call"
	MethodPing       Method = "ping"
)

// methodHandler returns a result, a *Error for protocol failures, or any
// other error for unexpected failures.
type methodHandler func(ctx context.Context, params json.RawMessage) (any, error)

// SectionLookup resolves one section of one document.
type SectionLookup interface {
	Lookup(ctx context.Context, documentName, sectionRef string) lookup.Result
}

// ServerInfo describes this server in the initialize response.
type ServerInfo struct {
	Name    string
	Version string
}

// DefaultServerInfo is reported when no other identity is configured.
var DefaultServerInfo = ServerInfo{Name: "mosaic-mcp-server", Version: "1.0.0"}

// Server dispatches JSON-RPC requests. It holds no per-request state.
type Server struct {
	lookup  SectionLookup
	info    ServerInfo
	log     *slog.Logger
	metrics *metrics.Metrics

	methods map[Method]methodHandler
	tools   map[string]toolHandler
}

// NewServer creates a dispatcher backed by l. m may be nil.
func NewServer(l SectionLookup, info ServerInfo, log *slog.Logger, m *metrics.Metrics) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		lookup:  l,
		info:    info,
		log:     log,
		metrics: m,
	}
	s.methods = map[Method]methodHandler{
		MethodInitialize: s.handleInitialize,
		MethodToolsList:  s.handleToolsList,
		MethodToolsCall:  s.handleToolsCall,
		MethodPing:       s.handlePing,
	}
	s.tools = map[string]toolHandler{
		ToolGetSection: s.callGetSection,
	}
	return s
}

// Handle processes one request. It returns nil for notifications, which
// get no response.
func (s *Server) Handle(ctx context.Context, req Request) *Response {
	start := time.Now()
	method := Method(req.Method)

	handler, ok := s.methods[method]
	if !ok && req.IsNotification() && strings.HasPrefix(req.Method, "notifications/") {
		s.log.Debug("notification", "method", req.Method)
		s.metrics.ObserveRPC("notification", "ok", time.Since(start))
		return nil
	}

	resp := &Response{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		resp.Error = errorf(CodeMethodNotFound, "Method not found: %s", req.Method)
		s.metrics.ObserveRPC("unknown", statusLabel(resp.Error), time.Since(start))
		return resp
	}

	result, err := s.invoke(ctx, method, handler, req.Params)
	if err != nil {
		var rpcErr *Error
		if !errors.As(err, &rpcErr) {
			s.log.Error("handler error", "method", req.Method, "error", err)
			rpcErr = errorf(CodeInternal, "Internal error: %v", err)
		}
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}

	s.metrics.ObserveRPC(string(method), statusLabel(resp.Error), time.Since(start))
	return resp
}

// invoke runs a handler, turning panics into errors.
func (s *Server) invoke(ctx context.Context, method Method, h methodHandler, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("handler panic", "method", string(method), "panic", r)
			err = fmt.Errorf("%v", r)
		}
	}()
	return h(ctx, params)
}

func statusLabel(e *Error) string {
	if e == nil {
		return "ok"
	}
	switch e.Code {
	case CodeParseError:
		return "parse_error"
	case CodeMethodNotFound:
		return "method_not_found"
	case CodeInvalidParams:
		return "invalid_params"
	default:
		return "internal_error"
	}
}

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (any, error) {
	return &mcp.InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{},
		},
		ServerInfo: &mcp.Implementation{
			Name:    s.info.Name,
			Version: s.info.Version,
		},
	}, nil
}

func (s *Server) handleToolsList(ctx context.Context, params json.RawMessage) (any, error) {
	return &mcp.ListToolsResult{
		Tools: []*mcp.Tool{getSectionTool()},
	}, nil
}

func (s *Server) handlePing(ctx context.Context, params json.RawMessage) (any, error) {
	return map[string]any{}, nil
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var callParams toolsCallParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &callParams); err != nil {
			return nil, errorf(CodeInvalidParams, "Invalid params: %v", err)
		}
	}

	tool, ok := s.tools[callParams.Name]
	if !ok {
		return nil, errorf(CodeMethodNotFound, "Unknown tool: %s", callParams.Name)
	}
	if callParams.Arguments == nil {
		callParams.Arguments = map[string]any{}
	}
	return tool(ctx, callParams.Arguments)
}
