// Package server exposes the decoder over HTTP: a one-shot JSON endpoint
// and a WebSocket variant that streams parse events as they happen.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"wld-viewer/internal/catalog"
	"wld-viewer/internal/console"
	"wld-viewer/internal/wld"
	"wld-viewer/internal/worldstat"
)

// MaxUploadBytes bounds one uploaded world file after decompression.
const MaxUploadBytes = 256 << 20

// ParseResponse is the reply of POST /api/parse.
type ParseResponse struct {
	Stats worldstat.Stats `json:"stats"`
	Log   []console.Event `json:"log"`
	Error string          `json:"error,omitempty"`
}

type Server struct {
	catalog *catalog.DB // optional
	log     *log.Logger

	upgrader websocket.Upgrader
}

func New(cat *catalog.DB, logger *log.Logger) *Server {
	return &Server{
		catalog: cat,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Routes mounts every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/parse", s.handleParse)
	mux.HandleFunc("GET /api/worlds", s.handleWorlds)
	mux.HandleFunc("GET /ws/parse", s.handleParseWS)
	return mux
}

// readBody drains the request body, honoring Content-Encoding gzip and
// zstd, bounded by MaxUploadBytes.
func readBody(r *http.Request) ([]byte, error) {
	var src io.Reader = r.Body
	switch r.Header.Get("Content-Encoding") {
	case "", "identity":
	case "gzip":
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		src = zr
	case "zstd":
		zr, err := zstd.NewReader(r.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		src = zr
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", r.Header.Get("Content-Encoding"))
	}

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxUploadBytes)
	}
	return data, nil
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}

	rec := &console.Recorder{}
	world, derr := wld.Decode(data, rec.Sink())

	resp := ParseResponse{Log: rec.Events()}
	if resp.Log == nil {
		resp.Log = []console.Event{}
	}
	if world != nil {
		resp.Stats = worldstat.Collect(world)
	}
	if derr != nil {
		resp.Error = derr.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logf("parse response: %v", err)
	}
}

func (s *Server) handleWorlds(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, "no catalog configured", http.StatusNotFound)
		return
	}
	entries, err := s.catalog.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.logf("worlds response: %v", err)
	}
}

// wsLog is one streamed parse event.
type wsLog struct {
	Type  string        `json:"type"` // "log"
	Level console.Level `json:"level"`
	Msg   string        `json:"msg"`
}

// wsResult terminates the stream.
type wsResult struct {
	Type  string          `json:"type"` // "result"
	Stats worldstat.Stats `json:"stats"`
	Error string          `json:"error,omitempty"`
}

// handleParseWS expects one binary message carrying a world file and
// streams log events back as they are produced, then a final result.
func (s *Server) handleParseWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetReadLimit(MaxUploadBytes)
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		return
	}
	if msgType != websocket.BinaryMessage || len(data) == 0 {
		_ = s.writeWS(conn, wsResult{Type: "result", Error: "expected one non-empty binary message"})
		return
	}

	// The decoder is synchronous, so the sink can write to the socket
	// directly without extra goroutines.
	sink := func(level console.Level, msg string) {
		_ = s.writeWS(conn, wsLog{Type: "log", Level: level, Msg: msg})
	}
	world, derr := wld.Decode(data, sink)

	res := wsResult{Type: "result"}
	if world != nil {
		res.Stats = worldstat.Collect(world)
	}
	if derr != nil {
		res.Error = derr.Error()
	}
	_ = s.writeWS(conn, res)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) writeWS(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(v)
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}
