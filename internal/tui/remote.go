package tui

import (
	"log"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/pkg/events"
)

// RemoteController talks to a running server over /ws/execute.
type RemoteController struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	send    func(tea.Msg)
	once    sync.Once
}

// Dial connects to url, e.g. ws://127.0.0.1:8000/ws/execute.
func Dial(url string) (*RemoteController, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", url)
	}
	return &RemoteController{ws: ws}, nil
}

// SetProgram starts forwarding server frames to p.
func (c *RemoteController) SetProgram(p *tea.Program) {
	c.start(p.Send)
}

func (c *RemoteController) start(send func(tea.Msg)) {
	c.send = send
	go c.readLoop()
}

func (c *RemoteController) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.send(events.DisconnectedMsg{Err: err})
			}
			return
		}
		c.send(events.FrameMsg{Text: string(data)})
	}
}

// ProcessUserInput sends input as one text frame.
func (c *RemoteController) ProcessUserInput(input string) {
	c.writeMu.Lock()
	err := c.ws.WriteMessage(websocket.TextMessage, []byte(input))
	c.writeMu.Unlock()
	if err != nil {
		log.Printf("[ERROR] [Chat] Send failed: %v", err)
		if c.send != nil {
			c.send(events.DisconnectedMsg{Err: err})
		}
	}
}

// Stop closes the connection with a normal closure.
func (c *RemoteController) Stop() {
	c.once.Do(func() {
		c.writeMu.Lock()
		c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.ws.Close()
	})
}
