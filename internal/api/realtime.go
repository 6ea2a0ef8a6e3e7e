package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/internal/gesture"
	"github.com/pageza/mealtrack/backend/internal/realtime"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

// RealtimeHandler upgrades to a websocket that streams the caller's store
// and accepts swipe gestures on meal items.
type RealtimeHandler struct {
	registry *workspace.Registry
	hub      *realtime.Hub
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(registry *workspace.Registry, hub *realtime.Hub, log logrus.FieldLogger) *RealtimeHandler {
	return &RealtimeHandler{
		registry: registry,
		hub:      hub,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth is by access token, never cookies.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *RealtimeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", h.Connect)
}

func (h *RealtimeHandler) Connect(c *gin.Context) {
	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(ws.UserID, ws.ID, conn)
	h.hub.Register(client)
	defer h.hub.Unregister(client)
	go client.WritePump()

	client.Send(realtime.Event{Type: realtime.EventSession, Data: ws.Session.Snapshot()})
	client.Send(realtime.Event{Type: realtime.EventSnapshot, Data: ws.Store.Snapshot()})

	err = realtime.ReadPump(conn, func(msg realtime.Message) {
		h.handle(c, ws, client, msg)
	})
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		h.log.WithError(err).WithField("user_id", ws.UserID).Debug("websocket closed")
	}
}

func (h *RealtimeHandler) handle(c *gin.Context, ws *workspace.Workspace, client *realtime.Client, msg realtime.Message) {
	ctx := c.Request.Context()

	switch msg.Type {
	case realtime.MessageRefresh:
		// Errors reach the client as a notification.
		_ = ws.Store.FetchMeals(ctx, ws.Store.CurrentDate(), ws.UserID)

	case realtime.MessageSwipe:
		itemID, err := uuid.Parse(msg.ItemID)
		if err != nil {
			client.Send(realtime.Event{Type: realtime.EventError, Data: "invalid item id"})
			return
		}

		switch gesture.Classify(msg.DX, msg.Threshold) {
		case gesture.ActionSwipeLeft:
			if ws.Store.Busy() {
				client.Send(realtime.Event{Type: realtime.EventError, Data: errBusy.Error()})
				return
			}
			_ = ws.Store.RemoveMealItem(ctx, itemID)
		case gesture.ActionSwipeRight:
			for _, meal := range ws.Store.Meals() {
				for _, item := range meal.MealItems {
					if item.ID == itemID {
						client.Send(realtime.Event{Type: realtime.EventEdit, Data: item})
						return
					}
				}
			}
			client.Send(realtime.Event{Type: realtime.EventError, Data: "meal item not found"})
		}

	default:
		client.Send(realtime.Event{Type: realtime.EventError, Data: "unknown message type"})
	}
}
