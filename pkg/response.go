package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
	Text string
}{
	JSON: "application/json",
	Text: "text/plain; charset=utf-8",
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteResponse(w http.ResponseWriter, contentType, message string, statusCode int) {
	WriteResponseBytes(w, contentType, []byte(message), statusCode)
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

func WriteResponseBytesOK(w http.ResponseWriter, contentType string, message []byte) {
	WriteResponseBytes(w, contentType, message, http.StatusOK)
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponse(w, ContentType.Text, message, http.StatusOK)
}

// WriteJSON marshals the value and writes it with the given status code.
// If marshalling fails, a 500 is sent instead.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal json response: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	WriteResponseBytes(w, ContentType.JSON, body, statusCode)
}

// WriteMessage writes the {"message": ...} body used by most endpoints.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, MessageResponse{Message: message})
}
