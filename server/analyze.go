package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/gouct/executor/mcts"
	"github.com/brensch/gouct/executor/playout"
)

const (
	defaultInterval = 1000
	wsWriteTimeout  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AnalysisMessage is one frame of the analysis stream.
type AnalysisMessage struct {
	Type   string           `json:"type"` // snapshot or error
	Done   bool             `json:"done"`
	Error  string           `json:"error,omitempty"`
	Result *GenMoveResponse `json:"result,omitempty"`
}

// handleAnalyze reads one PositionRequest from the socket and searches it in
// chunks of Interval playouts. Each chunk is merged into the running tree and
// a snapshot of the merged tree is sent. The stream ends when the budget is
// spent or the client disconnects.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	var req PositionRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Debug("analyze: no request", "err", err)
		return
	}
	b, err := boardFor(req)
	if err != nil {
		_ = s.send(conn, AnalysisMessage{Type: "error", Done: true, Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout(req))
	defer cancel()

	// The only further reads are control frames; a read error means the
	// client is gone.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	total := s.iterations(req)
	interval := req.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	m := s.searcher(req)
	var influence *playout.Influence
	if req.Ownership {
		influence = playout.NewInfluence(b.Size())
	}

	start := time.Now()
	var root *mcts.Node
	for chunk, done := 0, 0; done < total; chunk++ {
		n := min(interval, total-done)
		if req.Seed != 0 {
			m.Seed = req.Seed + int64(chunk)
		}
		res, err := m.Search(ctx, b, mcts.Budget{Iterations: n})
		root = mcts.Merge(root, res.Root)
		if influence != nil {
			influence.Merge(res.Influence)
		}
		done += n

		merged := m.Config.Result(root)
		merged.Influence = influence
		merged.Elapsed = time.Since(start)
		resp := s.genMoveResponse(b, m.Config, merged)

		final := done >= total || err != nil
		if werr := s.send(conn, AnalysisMessage{Type: "snapshot", Done: final, Result: &resp}); werr != nil {
			s.logger.Debug("analyze: client gone", "err", werr)
			return
		}
		if err != nil {
			s.logger.Info("analyze stopped", "err", err, "plays", root.Plays)
			break
		}
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteTimeout))
}

func (s *Server) send(conn *websocket.Conn, msg AnalysisMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}
