// Package mcp exposes story sessions as Model Context Protocol tools, so agents can play.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/novella"
	"github.com/aretw0/novella/internal/logging"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/sanitize"
	"github.com/aretw0/novella/pkg/session"
)

// Engine defines the story operations the MCP server needs.
type Engine interface {
	Start(ctx context.Context, playerName, locale string) (*domain.Session, *domain.Node, error)
	GetNode(ctx context.Context, s *domain.Session, id string) (*domain.Session, *domain.Node, error)
	Choose(ctx context.Context, s *domain.Session, nodeID string, index int) (*domain.Session, *domain.Node, error)
	Back(ctx context.Context, s *domain.Session) (*domain.Session, *domain.Node, error)
	SubmitAnswer(ctx context.Context, s *domain.Session, nodeID, answer string) (*domain.Session, *domain.Node, error)
	Locales() []string
	DefaultLocale() string
	Inspect(locale string) ([]domain.Node, error)
}

// StepResponse is returned by every tool that moves a session.
type StepResponse struct {
	SessionID string       `json:"session_id" jsonschema_description:"Pass this to later calls to continue the same story"`
	Node      *domain.Node `json:"node" jsonschema_description:"The node now shown to the player"`
	History   []string     `json:"history" jsonschema_description:"Visited node IDs; the last one is current"`
}

// LocalesResponse lists the available story locales.
type LocalesResponse struct {
	Locales []string `json:"locales"`
	Default string   `json:"default"`
}

type startArgs struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

type nodeArgs struct {
	SessionID string `json:"session_id"`
	NodeID    string `json:"node_id"`
}

type chooseArgs struct {
	SessionID   string `json:"session_id"`
	NodeID      string `json:"node_id"`
	ChoiceIndex int    `json:"choice_index"`
}

type backArgs struct {
	SessionID string `json:"session_id"`
}

type answerArgs struct {
	SessionID string `json:"session_id"`
	NodeID    string `json:"node_id"`
	Answer    string `json:"answer"`
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logger,
		mcpServer: server.NewMCPServer("novella-mcp", novella.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_story",
		mcp.WithDescription("Start a new story session. Returns the session ID and the start node."),
		mcp.WithString("name", mcp.Description("Player name used in the story text (default: Hero)")),
		mcp.WithString("locale", mcp.Description("Story locale, e.g. en-US (default: the server default)")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_node",
		mcp.WithDescription("Show a node by ID and record it in the session history."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID from start_story")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node to show")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetNode))

	s.mcpServer.AddTool(mcp.NewTool("choose",
		mcp.WithDescription("Take one of the choices shown for a node. The index counts only the visible choices."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID from start_story")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node whose choices were shown")),
		mcp.WithNumber("choice_index", mcp.Required(), mcp.Description("Zero-based index of the visible choice")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleChoose))

	s.mcpServer.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Return to the previous node."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID from start_story")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("submit_answer",
		mcp.WithDescription("Answer the question shown by a quiz node."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID from start_story")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("The quiz node")),
		mcp.WithString("answer", mcp.Required(), mcp.Description("The player's answer")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmitAnswer))

	s.mcpServer.AddTool(mcp.NewTool("list_locales",
		mcp.WithDescription("List the locales the story is available in."),
		mcp.WithOutputSchema[LocalesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListLocales))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args startArgs) (StepResponse, error) {
	name, err := sanitize.Name(args.Name)
	if err != nil {
		return StepResponse{}, fmt.Errorf("name rejected: %w", err)
	}
	locale := args.Locale
	if locale == "" {
		locale = s.engine.DefaultLocale()
	}

	id := uuid.NewString()
	var node *domain.Node
	sess, err := s.sessions.Update(ctx, id, func(*domain.Session) (*domain.Session, error) {
		next, n, err := s.engine.Start(ctx, name, locale)
		node = n
		return next, err
	})
	if err != nil {
		return StepResponse{}, fmt.Errorf("start failed: %w", err)
	}
	s.logger.Info("MCP session started", "session_id", id, "locale", locale)
	return StepResponse{SessionID: id, Node: node, History: sess.History}, nil
}

func (s *Server) handleGetNode(ctx context.Context, _ mcp.CallToolRequest, args nodeArgs) (StepResponse, error) {
	return s.advance(ctx, args.SessionID, func(cur *domain.Session) (*domain.Session, *domain.Node, error) {
		return s.engine.GetNode(ctx, cur, args.NodeID)
	})
}

func (s *Server) handleChoose(ctx context.Context, _ mcp.CallToolRequest, args chooseArgs) (StepResponse, error) {
	return s.advance(ctx, args.SessionID, func(cur *domain.Session) (*domain.Session, *domain.Node, error) {
		return s.engine.Choose(ctx, cur, args.NodeID, args.ChoiceIndex)
	})
}

func (s *Server) handleBack(ctx context.Context, _ mcp.CallToolRequest, args backArgs) (StepResponse, error) {
	return s.advance(ctx, args.SessionID, func(cur *domain.Session) (*domain.Session, *domain.Node, error) {
		return s.engine.Back(ctx, cur)
	})
}

func (s *Server) handleSubmitAnswer(ctx context.Context, _ mcp.CallToolRequest, args answerArgs) (StepResponse, error) {
	answer, err := sanitize.Input(args.Answer)
	if err != nil {
		s.logger.Warn("MCP answer rejected", "err", err, "size", len(args.Answer))
		return StepResponse{}, fmt.Errorf("answer rejected: %w", err)
	}
	return s.advance(ctx, args.SessionID, func(cur *domain.Session) (*domain.Session, *domain.Node, error) {
		return s.engine.SubmitAnswer(ctx, cur, args.NodeID, answer)
	})
}

func (s *Server) handleListLocales(_ context.Context, _ mcp.CallToolRequest, _ struct{}) (LocalesResponse, error) {
	return LocalesResponse{Locales: s.engine.Locales(), Default: s.engine.DefaultLocale()}, nil
}

func (s *Server) advance(ctx context.Context, id string, op func(*domain.Session) (*domain.Session, *domain.Node, error)) (StepResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return StepResponse{}, fmt.Errorf("%w: malformed session_id", domain.ErrSessionNotInitialized)
	}

	var node *domain.Node
	sess, err := s.sessions.Update(ctx, id, func(cur *domain.Session) (*domain.Session, error) {
		if cur == nil {
			return nil, domain.ErrSessionNotInitialized
		}
		next, n, err := op(cur)
		node = n
		return next, err
	})
	if err != nil {
		return StepResponse{}, err
	}
	return StepResponse{SessionID: id, Node: node, History: sess.History}, nil
}

func (s *Server) registerResources() {
	for _, locale := range s.engine.Locales() {
		nodes, err := s.engine.Inspect(locale)
		if err != nil {
			// UI-only locale.
			continue
		}
		uri := "novella://story/" + locale
		s.mcpServer.AddResource(mcp.NewResource(uri, "Story graph ("+locale+")",
			mcp.WithMIMEType("application/json"),
		), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			jsonBytes, err := json.Marshal(nodes)
			if err != nil {
				return nil, fmt.Errorf("failed to encode story: %w", err)
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(jsonBytes),
				},
			}, nil
		})
	}
}
