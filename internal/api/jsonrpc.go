package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/foodshare/foodshare/pkg/logging"
	"github.com/foodshare/foodshare/pkg/telemetry"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MethodHandler is a function that handles a JSON-RPC method
type MethodHandler func(ctx *gin.Context, params json.RawMessage) (interface{}, error)

// JSONRPCHandler handles JSON-RPC requests
type JSONRPCHandler struct {
	methods map[string]MethodHandler
	logger  *zap.Logger
}

// NewJSONRPCHandler creates a new JSON-RPC handler
func NewJSONRPCHandler() *JSONRPCHandler {
	return &JSONRPCHandler{
		methods: make(map[string]MethodHandler),
		logger:  logging.WithComponent("jsonrpc"),
	}
}

// RegisterMethod registers a method handler
func (h *JSONRPCHandler) RegisterMethod(method string, handler MethodHandler) {
	h.methods[method] = handler
}

// Handle handles a JSON-RPC request
func (h *JSONRPCHandler) Handle(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "jsonrpc.handle")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req JSONRPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, nil, &JSONRPCError{Code: ErrParseError, Message: "Parse error", Data: ErrorData{Error: err.Error()}})
		return
	}

	if req.JSONRPC != "2.0" {
		h.sendError(c, req.ID, &JSONRPCError{Code: ErrInvalidRequest, Message: "Invalid Request", Data: ErrorData{Error: "invalid jsonrpc version"}})
		return
	}
	span.SetAttributes(attribute.String("rpc.method", req.Method))

	handler, ok := h.methods[req.Method]
	if !ok {
		h.sendError(c, req.ID, &JSONRPCError{
			Code:    ErrMethodNotFound,
			Message: "Method not found",
			Data:    ErrorData{Error: fmt.Sprintf("method %s not found", req.Method)},
		})
		return
	}

	result, err := handler(c, req.Params)
	if err != nil {
		rpcErr := toRPCError(err)
		h.logError(c, req.Method, rpcErr, err)
		h.sendError(c, req.ID, rpcErr)
		return
	}

	h.sendResponse(c, req.ID, result)
}

func (h *JSONRPCHandler) logError(c *gin.Context, method string, rpcErr *JSONRPCError, err error) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.Int("code", rpcErr.Code),
		zap.String("request_id", c.GetString(requestIDKey)),
	}
	if rpcErr.Code == ErrStorageFailure {
		h.logger.Error("JSON-RPC method failed", append(fields, zap.Error(err))...)
		return
	}
	h.logger.Debug("JSON-RPC method rejected", append(fields, zap.String("message", rpcErr.Message))...)
}

// sendResponse sends a successful JSON-RPC response
func (h *JSONRPCHandler) sendResponse(c *gin.Context, id interface{}, result interface{}) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	c.JSON(http.StatusOK, resp)
}

// sendError sends an error JSON-RPC response
func (h *JSONRPCHandler) sendError(c *gin.Context, id interface{}, rpcErr *JSONRPCError) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   rpcErr,
	}
	c.JSON(http.StatusOK, resp)
}

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)
