package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// mockWebSocketConn records messages written through the hub.
type mockWebSocketConn struct {
	sentMessages []sentMessage
	writeErr     error
}

type sentMessage struct {
	messageType int
	data        []byte
}

func (m *mockWebSocketConn) WriteMessage(messageType int, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.sentMessages = append(m.sentMessages, sentMessage{
		messageType: messageType,
		data:        data,
	})
	return nil
}

func (m *mockWebSocketConn) decoded(t *testing.T) []ProgressMessage {
	t.Helper()
	messages := make([]ProgressMessage, 0, len(m.sentMessages))
	for _, sent := range m.sentMessages {
		assert.Equal(t, websocket.TextMessage, sent.messageType)
		var msg ProgressMessage
		require.NoError(t, json.Unmarshal(sent.data, &msg))
		messages = append(messages, msg)
	}
	return messages
}

func TestProgressHub_Broadcast(t *testing.T) {
	hub := newProgressHub()
	first := &mockWebSocketConn{}
	second := &mockWebSocketConn{}
	hub.add(first)
	hub.add(second)

	hub.broadcast(ProgressMessage{Type: ProgressRunStarted, TotalSteps: 12})

	for _, conn := range []*mockWebSocketConn{first, second} {
		messages := conn.decoded(t)
		require.Len(t, messages, 1)
		assert.Equal(t, ProgressRunStarted, messages[0].Type)
		assert.Equal(t, 12, messages[0].TotalSteps)
		assert.NotEmpty(t, messages[0].Time)
	}
}

func TestProgressHub_DropsFailingClient(t *testing.T) {
	hub := newProgressHub()
	healthy := &mockWebSocketConn{}
	broken := &mockWebSocketConn{writeErr: errors.New("connection reset")}
	hub.add(healthy)
	hub.add(broken)
	require.Equal(t, 2, hub.clientCount())

	hub.broadcast(ProgressMessage{Type: ProgressRunStarted, TotalSteps: 1})

	assert.Equal(t, 1, hub.clientCount())
	assert.Len(t, healthy.decoded(t), 1)
}

func TestProgressHub_Remove(t *testing.T) {
	hub := newProgressHub()
	conn := &mockWebSocketConn{}
	hub.add(conn)
	hub.remove(conn)
	require.Equal(t, 0, hub.clientCount())

	// Removing twice must not unbalance the connection gauge.
	hub.remove(conn)

	hub.broadcast(ProgressMessage{Type: ProgressRunStarted})
	assert.Empty(t, conn.sentMessages)
}

func TestProgressObserver_Events(t *testing.T) {
	hub := newProgressHub()
	conn := &mockWebSocketConn{}
	hub.add(conn)

	observer := newProgressObserver(hub)

	confidence := 0.91
	result := model.ValidationResult{
		Step:          model.TestStep{StepID: "S1", ScreenID: "MainMenu", ExpectedStringID: "title"},
		ExpectedText:  "Settings",
		ExtractedText: "Settings",
		Result:        model.MatchPass,
		Confidence:    &confidence,
	}

	observer.OnRunStart(3)
	observer.OnStepComplete(result)
	observer.OnRunComplete([]model.ValidationResult{result})
	observer.OnError(errors.New("screenshot unreadable"), &result.Step)

	messages := conn.decoded(t)
	require.Len(t, messages, 4)

	assert.Equal(t, ProgressRunStarted, messages[0].Type)
	assert.Equal(t, 3, messages[0].TotalSteps)

	assert.Equal(t, ProgressStepCompleted, messages[1].Type)
	require.NotNil(t, messages[1].Result)
	assert.Equal(t, "S1", messages[1].Result.Step.StepID)
	assert.Equal(t, model.MatchPass, messages[1].Result.Result)

	assert.Equal(t, ProgressRunCompleted, messages[2].Type)
	assert.Equal(t, 1, messages[2].TotalSteps)
	require.NotNil(t, messages[2].Summary)
	assert.Equal(t, 1, messages[2].Summary.Total)
	assert.Equal(t, 1, messages[2].Summary.Passed)

	assert.Equal(t, ProgressRunError, messages[3].Type)
	assert.Equal(t, "screenshot unreadable", messages[3].Error)
}

func TestServer_ValidateHandlerBroadcastsProgress(t *testing.T) {
	server := newValidationTestServer(t)
	conn := &mockWebSocketConn{}
	server.hub.add(conn)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", nil)
	w := httptest.NewRecorder()
	server.validateHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	messages := conn.decoded(t)
	require.Len(t, messages, 3)
	assert.Equal(t, ProgressRunStarted, messages[0].Type)
	assert.Equal(t, 1, messages[0].TotalSteps)
	assert.Equal(t, ProgressStepCompleted, messages[1].Type)
	assert.Equal(t, ProgressRunCompleted, messages[2].Type)
}

func TestWebSocketUpgrader(t *testing.T) {
	t.Run("check origin allows any origin", func(t *testing.T) {
		allowed := upgrader.CheckOrigin(&http.Request{
			Header: http.Header{
				"Origin": []string{"http://example.com"},
			},
		})
		assert.True(t, allowed)

		allowed = upgrader.CheckOrigin(&http.Request{
			Header: http.Header{
				"Origin": []string{"https://another-domain.com"},
			},
		})
		assert.True(t, allowed)
	})

	t.Run("buffer sizes", func(t *testing.T) {
		assert.Equal(t, 1024, upgrader.ReadBufferSize)
		assert.Equal(t, 1024, upgrader.WriteBufferSize)
	})
}
