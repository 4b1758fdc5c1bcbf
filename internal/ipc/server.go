package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/gridzones/internal/config"
	"github.com/1broseidon/gridzones/internal/engine"
	"github.com/1broseidon/gridzones/internal/runtimepath"
	"github.com/1broseidon/gridzones/internal/snapshot"
)

// Server answers CLI requests on the daemon's unix socket. One connection
// carries one request and one response, both newline-delimited JSON.
type Server struct {
	socketPath string
	configPath string
	listener   net.Listener
	eng        *engine.Engine
	snaps      *snapshot.Store
	log        *slog.Logger
	startTime  time.Time

	reloadChan   chan *config.Config
	shutdownChan chan struct{}

	mu      sync.Mutex
	closing bool
}

// NewServer creates a new IPC server. A loaded configuration is pushed to
// reloadChan on RELOAD; shutdownChan is signalled on SHUTDOWN. configPath
// overrides the default config location on reload; empty means default.
func NewServer(eng *engine.Engine, snaps *snapshot.Store, configPath string, reloadChan chan *config.Config, shutdownChan chan struct{}, log *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	// A stale socket from a crashed daemon would block the listen.
	os.Remove(socketPath)

	return &Server{
		socketPath:   socketPath,
		configPath:   configPath,
		eng:          eng,
		snaps:        snaps,
		log:          log,
		startTime:    time.Now(),
		reloadChan:   reloadChan,
		shutdownChan: shutdownChan,
	}, nil
}

// Start opens the socket and begins serving in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info("IPC server listening", "socket", s.socketPath)
	go s.serve()
	return nil
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return
			}
			s.log.Warn("IPC accept error", "error", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Warn("IPC read error", "error", err)
		return
	}

	req, err := parseRequest(line)
	if err != nil {
		s.writeResponse(conn, errorResponse("invalid request: %v", err))
		return
	}
	s.writeResponse(conn, s.dispatch(req))
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to encode response", "error", err)
		return
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		s.log.Warn("failed to send response", "error", err)
	}
}

func (s *Server) dispatch(req *Request) *Response {
	switch req.Command {
	case CommandActivate:
		return s.handleActivate(req.Payload)
	case CommandFocusCycle:
		return s.handleFocusCycle(req.Payload)
	case CommandUnmanage:
		return s.handleUnmanage()
	case CommandRetile:
		return s.handleRetile()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListZones:
		return s.handleListZones()
	case CommandListScreens:
		return s.handleListScreens()
	case CommandListMemory:
		return s.handleListMemory()
	case CommandForgetMemory:
		return s.handleForgetMemory(req.Payload)
	case CommandSnapshotSave:
		return s.handleSnapshotSave(req.Payload)
	case CommandSnapshotLoad:
		return s.handleSnapshotLoad(req.Payload)
	case CommandSnapshotList:
		return s.handleSnapshotList()
	case CommandReload:
		return s.handleReload()
	case CommandShutdown:
		return s.handleShutdown()
	default:
		return errorResponse("unknown command: %s", req.Command)
	}
}

func (s *Server) handleActivate(payload json.RawMessage) *Response {
	var p ZonePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return errorResponse("invalid activate payload: %v", err)
	}
	if p.Zone == "" {
		return errorResponse("zone is required")
	}
	if err := s.eng.Activate(p.Zone); err != nil {
		return errorResponse("failed to activate zone: %v", err)
	}
	return okResponse(nil)
}

func (s *Server) handleFocusCycle(payload json.RawMessage) *Response {
	var p ZonePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return errorResponse("invalid focus payload: %v", err)
	}
	if p.Zone == "" {
		return errorResponse("zone is required")
	}
	if err := s.eng.FocusCycle(p.Zone); err != nil {
		return errorResponse("failed to cycle focus: %v", err)
	}
	return okResponse(nil)
}

func (s *Server) handleUnmanage() *Response {
	if err := s.eng.Unmanage(); err != nil {
		return errorResponse("failed to unmanage: %v", err)
	}
	return okResponse(nil)
}

func (s *Server) handleRetile() *Response {
	s.eng.Retile()
	return okResponse(nil)
}

func (s *Server) handleGetStatus() *Response {
	return okResponse(StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Engine:        s.eng.Status(),
	})
}

func (s *Server) handleListZones() *Response {
	return okResponse(ZonesData{Zones: s.eng.ZoneList()})
}

func (s *Server) handleListScreens() *Response {
	return okResponse(ScreensData{Screens: s.eng.ScreenList()})
}

func (s *Server) handleListMemory() *Response {
	entries, err := s.eng.MemoryEntries(context.Background())
	if err != nil {
		return errorResponse("failed to list memory: %v", err)
	}
	return okResponse(MemoryData{Entries: entries})
}

func (s *Server) handleForgetMemory(payload json.RawMessage) *Response {
	var p AppPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return errorResponse("invalid forget payload: %v", err)
	}
	if p.App == "" {
		return errorResponse("app is required")
	}
	removed, err := s.eng.ForgetMemory(context.Background(), p.App)
	if err != nil {
		return errorResponse("failed to forget memory: %v", err)
	}
	return okResponse(CountData{Count: removed})
}

// handleSnapshotSave captures the current arrangement. Each application is
// recorded once, at its lowest-ID window's placement.
func (s *Server) handleSnapshotSave(payload json.RawMessage) *Response {
	var p SnapshotPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return errorResponse("invalid snapshot payload: %v", err)
	}

	status := s.eng.Status()
	seen := make(map[string]bool)
	snap := snapshot.Snapshot{Name: p.Name}
	for _, w := range status.Windows {
		if w.App == "" || seen[w.App] {
			continue
		}
		seen[w.App] = true
		snap.Placements = append(snap.Placements, snapshot.Placement{
			App:  w.App,
			Zone: w.ZoneKey,
			Tile: w.Tile,
		})
	}

	if err := s.snaps.Save(snap); err != nil {
		return errorResponse("failed to save snapshot: %v", err)
	}
	s.log.Info("snapshot saved", "name", p.Name, "placements", len(snap.Placements))
	return okResponse(CountData{Count: len(snap.Placements)})
}

func (s *Server) handleSnapshotLoad(payload json.RawMessage) *Response {
	var p SnapshotPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return errorResponse("invalid snapshot payload: %v", err)
	}

	snap, err := s.snaps.Load(p.Name)
	if err != nil {
		return errorResponse("failed to load snapshot: %v", err)
	}

	placed := 0
	for _, pl := range snap.Placements {
		n, err := s.eng.PlaceApp(pl.App, pl.Zone, pl.Tile)
		if err != nil {
			return errorResponse("failed to place %q: %v", pl.App, err)
		}
		placed += n
	}
	s.log.Info("snapshot loaded", "name", p.Name, "windows", placed)
	return okResponse(CountData{Count: placed})
}

func (s *Server) handleSnapshotList() *Response {
	infos, err := s.snaps.List()
	if err != nil {
		return errorResponse("failed to list snapshots: %v", err)
	}
	return okResponse(SnapshotsData{Snapshots: infos})
}

// handleReload loads the configuration fresh and hands it to the daemon.
// Validation happens here so the client sees config errors synchronously.
func (s *Server) handleReload() *Response {
	s.log.Info("IPC: reload requested")

	var newCfg *config.Config
	var err error
	if s.configPath != "" {
		var res *config.LoadResult
		res, err = config.LoadFromPath(s.configPath)
		if err == nil {
			newCfg = res.Config
		}
	} else {
		newCfg, err = config.Load()
	}
	if err != nil {
		return errorResponse("failed to reload config: %v", err)
	}

	// Hand off without blocking; a reload already in flight wins.
	select {
	case s.reloadChan <- newCfg:
	default:
	}
	return okResponse(nil)
}

func (s *Server) handleShutdown() *Response {
	s.log.Info("IPC: shutdown requested")
	select {
	case s.shutdownChan <- struct{}{}:
	default:
	}
	return okResponse(nil)
}
