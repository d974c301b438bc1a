package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"windward/internal/sim"
	"windward/internal/telemetry"
)

// Server - WebSocket-сервер. Принимает соединения, рассылает снимки
// состояния и мир при подключении, передает команды обработчику.
type Server struct {
	upgrader  websocket.Upgrader
	sim       *sim.Simulation
	handler   *ControlHandler
	telemetry *telemetry.Manager
	logger    zerolog.Logger

	clients   map[*SafeWriter]bool
	clientsMu sync.Mutex
}

// NewServer создает сервер над симуляцией
func NewServer(s *sim.Simulation, tm *telemetry.Manager, logger zerolog.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sim:       s,
		handler:   NewControlHandler(s, tm, logger),
		telemetry: tm,
		logger:    logger,
		clients:   make(map[*SafeWriter]bool),
	}
}

// HandleWS обновляет HTTP-соединение до WebSocket и обслуживает его
// до разрыва. Вызывается из HTTP-мультиплексора.
func (srv *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.logger.Error().Err(err).Msg("не удалось обновить соединение")
		return
	}

	writer := NewSafeWriter(conn)
	srv.addClient(writer)
	defer func() {
		srv.removeClient(writer)
		writer.Close()
	}()

	srv.logger.Info().Str("remote", r.RemoteAddr).Msg("клиент подключился")

	// Мир отправляется один раз при подключении: он неизменяем
	if err := writer.WriteJSON(NewWorldMessage(srv.sim.World())); err != nil {
		srv.logger.Error().Err(err).Msg("не удалось отправить мир")
		return
	}
	// И сразу первый снимок, чтобы клиент не ждал трансляции
	if err := writer.WriteJSON(NewStateMessage(srv.sim.Snapshot())); err != nil {
		srv.logger.Error().Err(err).Msg("не удалось отправить снимок")
		return
	}

	srv.readLoop(writer, r.RemoteAddr)
}

// readLoop читает сообщения клиента до разрыва соединения
func (srv *Server) readLoop(writer *SafeWriter, remote string) {
	for {
		_, data, err := writer.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				srv.logger.Warn().Err(err).Str("remote", remote).Msg("соединение оборвалось")
			} else {
				srv.logger.Info().Str("remote", remote).Msg("клиент отключился")
			}
			return
		}

		parsed, err := ParseMessage(data)
		if err != nil {
			srv.logger.Warn().Err(err).Msg("нечитаемое сообщение")
			if werr := writer.WriteJSON(NewInfoMessage("unparsable message")); werr != nil {
				return
			}
			continue
		}

		switch msg := parsed.(type) {
		case *ControlMessage:
			srv.handler.HandleControl(msg)

		case *ActionMessage:
			ack := srv.handler.HandleAction(msg)
			if err := writer.WriteJSON(ack); err != nil {
				return
			}

		case *PingMessage:
			if err := writer.WriteJSON(NewPongMessage(msg.ClientTime)); err != nil {
				return
			}
		}
	}
}

// BroadcastState рассылает снимок всем клиентам. Клиенты с ошибкой
// записи отключаются. Реализует game.StateBroadcaster.
func (srv *Server) BroadcastState(snap sim.Snapshot) {
	msg := NewStateMessage(snap)

	srv.clientsMu.Lock()
	writers := make([]*SafeWriter, 0, len(srv.clients))
	for w := range srv.clients {
		writers = append(writers, w)
	}
	srv.clientsMu.Unlock()

	for _, w := range writers {
		if err := w.WriteJSON(msg); err != nil {
			srv.logger.Warn().Err(err).Msg("ошибка отправки снимка, отключаем клиента")
			srv.removeClient(w)
			w.Close()
		}
	}
}

// ClientCount возвращает число подключенных клиентов
func (srv *Server) ClientCount() int {
	srv.clientsMu.Lock()
	defer srv.clientsMu.Unlock()
	return len(srv.clients)
}

func (srv *Server) addClient(w *SafeWriter) {
	srv.clientsMu.Lock()
	defer srv.clientsMu.Unlock()
	srv.clients[w] = true
}

func (srv *Server) removeClient(w *SafeWriter) {
	srv.clientsMu.Lock()
	defer srv.clientsMu.Unlock()
	delete(srv.clients, w)
}
