package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"pricedesk/pkg/log"
)

// Response represents a standardized ops API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn("Failed to write JSON response", zap.Error(err))
	}
}

// SuccessResponse sends a success response
func SuccessResponse(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Status: "success", Data: data})
}

// SuccessMessageResponse sends a success response with a message
func SuccessMessageResponse(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Status: "success", Message: message, Data: data})
}

// ErrorResponse sends an error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	var errMsg interface{}
	if err != nil {
		errMsg = err.Error()
	}
	writeJSON(w, statusCode, Response{Status: "error", Message: message, Error: errMsg})
}
