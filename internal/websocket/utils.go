package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/stemsi/nurseprep-backend/internal/response"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket. An empty errMsg
// falls back to the code's standard message.
func WriteError(conn *websocket.Conn, code response.ErrCode, errMsg string) error {
	if errMsg == "" {
		errMsg = response.GetMessage(code)
	}
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Code:  code,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure. An idle
// client is dropped after readWait.
func ReadJSON(conn *websocket.Conn, v any) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}
