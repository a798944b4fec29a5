package rpc

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolGetSection is the only tool this server exposes.
const ToolGetSection = "get_section"

type toolHandler func(ctx context.Context, args map[string]any) (any, error)

// callToolResult is the tools/call result. isError is always present,
// unlike mcp.CallToolResult which omits it when false.
type callToolResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError"`
}

// textContent mirrors mcp.TextContent. The SDK type marshals through
// json.Marshal, which would HTML-escape section text.
type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func getSectionTool() *mcp.Tool {
	return &mcp.Tool{
		Name: ToolGetSection,
		Description: "Retrieve a specific section from a reference document stored in blob storage. " +
			"Use this instead of loading entire files. Specify the file name (without path) and the " +
			"section reference number (e.g. '1', '2.3', '4.1.2'). " +
			"Returns the section text. If the file or section is not found, returns helpful context " +
			"listing available files or sections.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file_name": {
					Type:        "string",
					Description: "File name in the reference-files container, e.g. 'ORG-CLIENTS'. The .md extension is optional.",
				},
				"section_ref": {
					Type: "string",
					Description: "Section number such as '1', '2', '1.1', or '3.2'. Use just the number, " +
						"no § symbol and no trailing period. To discover section numbers, call get_section " +
						"with any value and the error response will list available sections.",
				},
			},
			Required: []string{"file_name", "section_ref"},
		},
	}
}

func (s *Server) callGetSection(ctx context.Context, args map[string]any) (any, error) {
	fileName, _ := args["file_name"].(string)
	sectionRef, _ := args["section_ref"].(string)
	if fileName == "" || sectionRef == "" {
		return nil, errorf(CodeInvalidParams, "Missing required arguments: file_name and section_ref")
	}

	res := s.lookup.Lookup(ctx, fileName, sectionRef)
	text, err := res.MarshalJSON()
	if err != nil {
		return nil, err
	}

	s.log.Info("get_section",
		"file_name", fileName,
		"section_ref", sectionRef,
		"outcome", string(res.Outcome),
	)
	return &callToolResult{
		Content: []textContent{{Type: "text", Text: string(text)}},
		IsError: res.IsError(),
	}, nil
}
