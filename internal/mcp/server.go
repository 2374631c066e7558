package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
	"github.com/felixgeelhaar/zahlenpirat/internal/tasks"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// Server exposes the chat engine and the score history as MCP tools
type Server struct {
	mcpServer *server.Server
	engine    *engine.Engine
	history   *history.Service
	tasks     *tasks.Generator
}

// Config contains configuration for the MCP server
type Config struct {
	Engine  *engine.Engine
	History *history.Service
	Tasks   *tasks.Generator
	Version string
}

// NewServer creates a new MCP server for Zahlenpirat
func NewServer(cfg Config) *Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	gen := cfg.Tasks
	if gen == nil {
		gen = tasks.NewGenerator()
	}

	s := &Server{
		engine:  cfg.Engine,
		history: cfg.History,
		tasks:   gen,
	}

	s.mcpServer = server.New(server.Info{
		Name:    "zahlenpirat",
		Version: version,
	}, server.WithInstructions(`
Zahlenpirat is a German arithmetic practice bot for primary school children.

Available tools:
- zahlenpirat_chat: Send a chat message and get the bot's reply
- zahlenpirat_settings: Show effective, session and persistent standards
- zahlenpirat_history: List the recorded sessions of a player
- zahlenpirat_leaderboard: Best sessions by points
- zahlenpirat_tasks: Generate practice tasks

Chat sessions are keyed by session_id; reuse it to continue a conversation.
`))

	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("zahlenpirat_chat").
		Description("Send one chat message to Zahlenpirat and return the reply text.").
		Handler(s.handleChat)

	s.mcpServer.Tool("zahlenpirat_settings").
		Description("Show the effective, session and persistent standards of a chat session.").
		Handler(s.handleSettings)

	s.mcpServer.Tool("zahlenpirat_history").
		Description("List the recorded practice sessions of a player.").
		Handler(s.handleHistory)

	s.mcpServer.Tool("zahlenpirat_leaderboard").
		Description("Rank recorded sessions by points.").
		Handler(s.handleLeaderboard)

	s.mcpServer.Tool("zahlenpirat_tasks").
		Description("Generate arithmetic tasks with multiple-choice answers.").
		Handler(s.handleTasks)
}

type ChatInput struct {
	SessionID string `json:"session_id" jsonschema:"description=Chat session ID; reuse it to continue a conversation"`
	Text      string `json:"text" jsonschema:"description=User message"`
	Plain     bool   `json:"plain,omitempty" jsonschema:"description=Strip emoji and umlauts from the reply"`
}

type ChatOutput struct {
	Text string `json:"text"`
}

type SettingsInput struct {
	SessionID string `json:"session_id" jsonschema:"description=Chat session ID"`
}

type SettingsOutput struct {
	View settings.View `json:"view"`
	Text string        `json:"text"`
}

type HistoryInput struct {
	Player string `json:"spieler" jsonschema:"description=Player name"`
}

type HistoryOutput struct {
	Player   string                 `json:"spieler"`
	Sessions []domain.SessionRecord `json:"sessions"`
}

type LeaderboardInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum number of entries (default: 10)"`
}

type LeaderboardOutput struct {
	Entries []history.LeaderboardEntry `json:"leaderboard"`
}

type TasksInput struct {
	Operators string `json:"operator,omitempty" jsonschema:"description=Operators such as '+,-' or 'x'"`
	Grade     int    `json:"klasse,omitempty" jsonschema:"description=School grade 1-4"`
	Count     int    `json:"count,omitempty" jsonschema:"description=Number of tasks (default: 1)"`
}

type TasksOutput struct {
	Tasks []tasks.Task `json:"tasks"`
}

var errNotConfigured = errors.New("service not configured")

func (s *Server) handleChat(ctx context.Context, input ChatInput) (ChatOutput, error) {
	if s.engine == nil {
		return ChatOutput{}, errNotConfigured
	}
	id := strings.TrimSpace(input.SessionID)
	if id == "" {
		return ChatOutput{}, errors.New("session_id is required")
	}

	reply := s.engine.HandleUserInput(ctx, id, input.Text)
	if input.Plain {
		reply = textnorm.ToPlain(reply)
	}
	return ChatOutput{Text: reply}, nil
}

func (s *Server) handleSettings(ctx context.Context, input SettingsInput) (SettingsOutput, error) {
	if s.engine == nil {
		return SettingsOutput{}, errNotConfigured
	}
	view, err := s.engine.EffectiveSettings(ctx, strings.TrimSpace(input.SessionID))
	if err != nil {
		return SettingsOutput{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return SettingsOutput{View: view, Text: engine.FormatView(view)}, nil
}

func (s *Server) handleHistory(ctx context.Context, input HistoryInput) (HistoryOutput, error) {
	if s.history == nil {
		return HistoryOutput{}, errNotConfigured
	}
	player := strings.TrimSpace(input.Player)
	if player == "" {
		return HistoryOutput{}, domain.ErrEmptyPlayer
	}

	sessions, err := s.history.History(ctx, player)
	if err != nil {
		return HistoryOutput{}, fmt.Errorf("failed to load history: %w", err)
	}
	return HistoryOutput{Player: player, Sessions: sessions}, nil
}

func (s *Server) handleLeaderboard(ctx context.Context, input LeaderboardInput) (LeaderboardOutput, error) {
	if s.history == nil {
		return LeaderboardOutput{}, errNotConfigured
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	board, err := s.history.Leaderboard(ctx, limit)
	if err != nil {
		return LeaderboardOutput{}, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	return LeaderboardOutput{Entries: board}, nil
}

func (s *Server) handleTasks(ctx context.Context, input TasksInput) (TasksOutput, error) {
	req := tasks.BatchRequest{Grade: input.Grade, Count: input.Count}
	if req.Count <= 0 {
		req.Count = 1
	}
	if input.Operators != "" {
		req.Operators = strings.Split(textnorm.NormalizeOperatorValue(input.Operators), ",")
	}
	return TasksOutput{Tasks: s.tasks.Batch(req)}, nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
