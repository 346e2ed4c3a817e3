package controller

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/benbeisheim/spartanchess-backend/internal/engine"
	"github.com/benbeisheim/spartanchess-backend/internal/model"
	"github.com/benbeisheim/spartanchess-backend/internal/service"
	"github.com/benbeisheim/spartanchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection serves one player's socket for a game until it closes.
// The handler goroutine reads; the client's pump is the only writer.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	playerID, _ := c.Locals("wsPlayerID").(string)

	client := model.NewClient(playerID, c)
	if err := wsc.gameService.RegisterConnection(gameID, client); err != nil {
		log.Printf("ws: failed to register connection: %v", err)
		writeError(c, err)
		return
	}
	go client.WritePump()
	defer func() {
		wsc.gameService.UnregisterConnection(gameID, client)
		client.Close()
		client.Wait()
	}()

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Printf("ws: read error: %v", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("ws: parse error: %v", err)
			client.Send(errorMessage(err))
			continue
		}

		reply, err := wsc.handleMessage(gameID, playerID, msg)
		if err != nil {
			reply = errorMessage(err)
		}
		if !client.Send(reply) {
			return
		}
	}
}

type legalMovesRequest struct {
	Square engine.Coord `json:"square"`
}

type legalMovesReply struct {
	Square       engine.Coord   `json:"square"`
	Mask         engine.Mask    `json:"mask"`
	Destinations []engine.Coord `json:"destinations"`
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) (ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return ws.Message{}, err
		}
		res, err := wsc.gameService.HandleMove(gameID, playerID, move)
		if err != nil {
			return ws.Message{}, err
		}
		return ws.NewMessage(ws.MessageTypeMoveResult, res)

	case ws.MessageTypeLegalMoves:
		var req legalMovesRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return ws.Message{}, err
		}
		mask, err := wsc.gameService.LegalMoves(gameID, req.Square)
		if err != nil {
			return ws.Message{}, err
		}
		return ws.NewMessage(ws.MessageTypeLegalMoves, legalMovesReply{
			Square:       req.Square,
			Mask:         mask,
			Destinations: mask.Squares(),
		})

	case ws.MessageTypeGameState:
		state, err := wsc.gameService.GetGameState(gameID)
		if err != nil {
			return ws.Message{}, err
		}
		return ws.NewMessage(ws.MessageTypeGameState, state)

	default:
		return ws.Message{}, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking holds the socket open until the player is matched, then
// sends the match and closes. A player who disconnects first leaves the queue.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("wsPlayerID").(string)

	ch := make(chan string, 1)
	if err := wsc.gameService.RegisterMatchmakingChannel(playerID, ch); err != nil {
		writeError(c, err)
		return
	}
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if ok {
			if err := c.WriteJSON(ws.Message{
				Type:    ws.MessageTypeMatchFound,
				Payload: json.RawMessage(event),
			}); err != nil {
				log.Printf("ws: failed to send match to %s: %v", playerID, err)
			}
		}
	case <-gone:
		if wsc.gameService.LeaveMatchmaking(playerID) {
			log.Printf("ws: %s disconnected, left matchmaking", playerID)
		}
	}

	// The reader must be done with the connection before the handler returns.
	c.Close()
	<-gone
}

func errorMessage(err error) ws.Message {
	msg, merr := ws.NewMessage(ws.MessageTypeError, map[string]string{"error": err.Error()})
	if merr != nil {
		return ws.Message{Type: ws.MessageTypeError}
	}
	return msg
}

// writeError writes straight to a connection that has no running pump.
func writeError(c *websocket.Conn, err error) {
	if werr := c.WriteJSON(errorMessage(err)); werr != nil {
		log.Printf("ws: failed to send error: %v", werr)
	}
}
