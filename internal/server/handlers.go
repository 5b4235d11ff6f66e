package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/copyleftdev/IBMOLS/internal/errors"
	"github.com/copyleftdev/IBMOLS/internal/plot"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type searchRef struct {
	ID string `json:"search_id"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, codeParseError, "Parse error", nil)
		return
	}
	if request.JSONRPC != "2.0" || request.Method == "" {
		s.respondWithError(w, codeInvalidRequest, "Invalid Request", request.ID)
		return
	}

	var (
		result interface{}
		err    error
	)
	switch request.Method {
	case "search.start":
		var req StartRequest
		if err = decodeParams(request.Params, &req); err == nil {
			result, err = s.Start(req)
		}
	case "search.status":
		var ref searchRef
		if err = decodeRef(request.Params, &ref); err == nil {
			result, err = s.Status(ref.ID)
		}
	case "search.cancel":
		var ref searchRef
		if err = decodeRef(request.Params, &ref); err == nil {
			result, err = s.Cancel(ref.ID)
		}
	default:
		s.respondWithError(w, codeMethodNotFound, "Method not found", request.ID)
		return
	}

	if err != nil {
		code := codeServerError
		if apperrors.HTTPStatus(err) == http.StatusBadRequest {
			code = codeInvalidParams
		}
		s.respondWithError(w, code, err.Error(), request.ID)
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: request.ID, Result: result})
}

// decodeParams accepts either a params object or an array holding one.
func decodeParams(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if raw[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return apperrors.BadRequest(err, "invalid params")
		}
		if len(arr) == 0 {
			return apperrors.BadRequest(nil, "missing params")
		}
		raw = arr[0]
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.BadRequest(err, "invalid params")
	}
	return nil
}

func decodeRef(raw json.RawMessage, ref *searchRef) error {
	if err := decodeParams(raw, ref); err != nil {
		return err
	}
	if ref.ID == "" {
		return apperrors.BadRequest(nil, "search_id is required")
	}
	return nil
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Warn("rpc request failed", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	writeJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleStart handles POST /api/v1/search
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest(err, "invalid request body"))
		return
	}

	status, err := s.Start(req)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, status)
}

// handleStatus handles GET /api/v1/search/{id}
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Status(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleCancel handles DELETE /api/v1/search/{id}
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	status, err := s.Cancel(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, status)
}

// handlePlot handles GET /api/v1/search/{id}/plot
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	status, err := s.Status(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	if status.Report == nil {
		apperrors.WriteJSON(w, apperrors.Errorf("search %s has no results yet", status.ID).
			WithStatus(http.StatusConflict))
		return
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("%s front of %s", status.Report.Problem, status.ID)
	if err := plot.Front(&buf, title, status.Report.Front); err != nil {
		apperrors.WriteJSON(w, apperrors.Wrap(err, "rendering plot"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
