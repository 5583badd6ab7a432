// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Content OS tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sanhik/contentos/internal/contentservice"
	"github.com/sanhik/contentos/internal/models"
	"github.com/sanhik/contentos/internal/vcs"
)

// Server wraps the MCP server with Content OS tools. Tool calls run as
// the configured agent identity, so commits from an LLM land on the
// agent's personal branch unless the agent owns the project.
type Server struct {
	mcp      *server.MCPServer
	svc      *contentservice.Service
	identity string
}

// New creates a new MCP server with all tools registered.
func New(svc *contentservice.Service, identity string) *Server {
	if identity == "" {
		identity = "mcp-agent"
	}
	s := &Server{svc: svc, identity: identity}

	s.mcp = server.NewMCPServer(
		"ContentOS",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_projects",
		mcp.WithDescription("Full-text search through project titles, tags and HEAD content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchProjects)

	s.mcp.AddTool(mcp.NewTool("read_project",
		mcp.WithDescription("Read a project's metadata, HEAD content and main-branch history."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Folder the project lives in")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
	), s.readProject)

	s.mcp.AddTool(mcp.NewTool("commit_version",
		mcp.WithDescription("Commit a new revision to a project. The revision lands on the "+
			"agent's personal branch unless the agent owns the project; a human owner "+
			"merges it into main. Read the revision contract first via the "+
			"contentos://revision-format resource."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Folder the project lives in")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full revision content")),
		mcp.WithString("title", mcp.Description("Revision title (defaults to the current title)")),
		mcp.WithString("message", mcp.Description("Commit message")),
	), s.commitVersion)

	s.mcp.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("List a project's revisions on one branch, newest first."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Folder the project lives in")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("branch", mcp.Description("Branch name (defaults to main)")),
	), s.getHistory)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List the top-level content folders."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("get_revision_contract",
		mcp.WithDescription("Returns the revision format contract. Call this before "+
			"committing to ensure correct structure."),
	), s.getRevisionContract)

	// Resource: revision format contract.
	s.mcp.AddResource(
		mcp.NewResource("contentos://revision-format", "Revision Format Contract",
			mcp.WithResourceDescription("How revisions, branches and merges work in Content OS."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRevisionFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetProject(ctx, folder, projectID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", folder, projectID)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) commitVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.svc.GetProject(ctx, folder, projectID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", folder, projectID)), nil
	}

	title := detail.Metadata.Title
	if t, tErr := req.RequireString("title"); tErr == nil && t != "" {
		title = t
	}
	message := "Agent commit"
	if m, mErr := req.RequireString("message"); mErr == nil && m != "" {
		message = m
	}

	rev, branch, err := s.svc.Commit(ctx, folder, projectID, vcs.CommitParams{
		Committer: s.identity,
		Content:   content,
		Title:     title,
		Tags:      detail.Metadata.Tags,
		Status:    detail.Metadata.Status,
		Message:   message,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("committed %s on branch %s", rev.VersionID, branch)), nil
}

func (s *Server) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projectID, err := req.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	branch := models.MainBranch
	if b, bErr := req.RequireString("branch"); bErr == nil && b != "" {
		branch = b
	}
	history, err := s.svc.GetHistory(ctx, folder, projectID, branch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(history, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listFolders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folders, err := s.svc.ListFolders(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(folders) == 0 {
		return mcp.NewToolResultText("no folders"), nil
	}
	return mcp.NewToolResultText(strings.Join(folders, "\n")), nil
}

func (s *Server) getRevisionContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RevisionFormatContract), nil
}

func (s *Server) readRevisionFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "contentos://revision-format",
			MIMEType: "text/markdown",
			Text:     RevisionFormatContract,
		},
	}, nil
}
