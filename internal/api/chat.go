package api

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Verdenroz/buff-ai/internal/agents"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Chatter answers chat requests. *agents.Supervisor implements it.
type Chatter interface {
	Handle(ctx context.Context, req agents.ChatRequest) (*agents.ChatResponse, error)
	HandleStream(ctx context.Context, req agents.ChatRequest) (iter.Seq2[string, error], error)
}

// Websocket frame types sent to the client
const (
	frameChunk = "chunk"
	frameDone  = "done"
	frameError = "error"
)

type wsFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ChatHandler serves the buffered, streamed and websocket chat endpoints
type ChatHandler struct {
	chat     Chatter
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewChatHandler creates the chat endpoints. allowedOrigins restricts
// websocket upgrades; "*" accepts any origin.
func NewChatHandler(chat Chatter, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{
		chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: logger.Get().With("component", "chat_api"),
	}
}

// Register mounts the chat routes
func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.handleChat)
	g.POST("/chat/stream", h.handleStream)
	g.GET("/chat/ws", h.handleWebsocket)
}

func (h *ChatHandler) handleChat(c echo.Context) error {
	req, err := bindChatRequest(c)
	if err != nil {
		return err
	}

	resp, err := h.chat.Handle(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// handleStream writes the answer as plain text, flushing every chunk.
// Failures before the first byte get a JSON error; later ones end the body.
func (h *ChatHandler) handleStream(c echo.Context) error {
	req, err := bindChatRequest(c)
	if err != nil {
		return err
	}

	seq, err := h.chat.HandleStream(c.Request().Context(), req)
	if err != nil {
		return err
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("X-Accel-Buffering", "no")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	for chunk, err := range seq {
		if err != nil {
			h.log.Warnf("chat stream ended early: %v", err)
			return nil
		}
		if _, err := resp.Write([]byte(chunk)); err != nil {
			h.log.Debugf("client went away: %v", err)
			return nil
		}
		resp.Flush()
	}
	return nil
}

// handleWebsocket answers every ChatRequest frame with chunk frames
// followed by a done or error frame
func (h *ChatHandler) handleWebsocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.log.Debugf("websocket upgrade failed: %v", err)
		return nil
	}
	defer conn.Close()

	ctx := c.Request().Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warnf("websocket closed unexpectedly: %v", err)
			}
			return nil
		}

		var req agents.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := conn.WriteJSON(wsFrame{Type: frameError, Error: "invalid request frame"}); err != nil {
				return nil
			}
			continue
		}

		if err := h.streamFrames(ctx, conn, req); err != nil {
			h.log.Debugf("websocket write failed: %v", err)
			return nil
		}
	}
}

// streamFrames returns an error only when the connection is no longer writable
func (h *ChatHandler) streamFrames(ctx context.Context, conn *websocket.Conn, req agents.ChatRequest) error {
	if err := req.Validate(); err != nil {
		return conn.WriteJSON(wsFrame{Type: frameError, Error: err.Error()})
	}

	seq, err := h.chat.HandleStream(ctx, req)
	if err != nil {
		return conn.WriteJSON(wsFrame{Type: frameError, Error: err.Error()})
	}

	for chunk, err := range seq {
		if err != nil {
			return conn.WriteJSON(wsFrame{Type: frameError, Error: err.Error()})
		}
		if err := conn.WriteJSON(wsFrame{Type: frameChunk, Content: chunk}); err != nil {
			return err
		}
	}
	return conn.WriteJSON(wsFrame{Type: frameDone})
}

func bindChatRequest(c echo.Context) (agents.ChatRequest, error) {
	var req agents.ChatRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return req, errors.NewValidationError("body", "request body must be a JSON chat request", nil)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
