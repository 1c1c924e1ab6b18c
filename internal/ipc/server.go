package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"stagehand/internal/daemon"
	"stagehand/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Stagehand", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockFilePath
	resp.HistoryDBPath = status.HistoryDBPath
	resp.Phase = string(status.Engine.Phase)
	resp.ActiveProduct = status.Engine.ActiveProduct
	resp.ActiveScene = status.Engine.ActiveScene
	resp.Queue = append(resp.Queue, status.Engine.Queue...)
	resp.Products = status.Engine.Products
	resp.Stats = status.Engine.Stats
	return nil
}

func (s *service) Stats(_ StatsRequest, resp *StatsResponse) error {
	resp.Stats = s.daemon.Engine().Stats()
	return nil
}

func (s *service) Skip(_ SkipRequest, resp *SkipResponse) error {
	s.log().Debug("skip requested")
	if err := s.daemon.Engine().Skip(s.ctx); err != nil {
		return err
	}
	resp.Skipped = true
	return nil
}

func (s *service) StopShow(_ StopShowRequest, resp *StopShowResponse) error {
	s.log().Debug("stop show requested")
	if err := s.daemon.Engine().StopShow(s.ctx); err != nil {
		return err
	}
	resp.Stopped = true
	return nil
}

func (s *service) Play(req PlayRequest, resp *PlayResponse) error {
	s.log().Debug("manual play requested", logging.String(logging.FieldProduct, req.Product))
	if err := s.daemon.Engine().Play(s.ctx, req.Product); err != nil {
		return err
	}
	resp.Product = req.Product
	return nil
}

func (s *service) Reload(_ ReloadRequest, resp *ReloadResponse) error {
	s.log().Debug("catalog reload requested")
	count, err := s.daemon.ReloadCatalog()
	if err != nil {
		return err
	}
	resp.Products = count
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.daemon.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, HistoryEntry{
			ID:         entry.ID,
			Product:    entry.Product,
			Scene:      entry.Scene,
			Author:     entry.Author,
			Comment:    entry.Comment,
			Confidence: entry.Confidence,
			Method:     entry.Method,
			SwitchedAt: entry.SwitchedAt,
		})
	}
	return nil
}

func (s *service) HistorySummary(_ HistorySummaryRequest, resp *HistorySummaryResponse) error {
	summary, err := s.daemon.HistorySummary(s.ctx)
	if err != nil {
		return err
	}
	resp.Products = make([]ProductSwitches, 0, len(summary))
	for _, count := range summary {
		resp.Products = append(resp.Products, ProductSwitches{
			Product:      count.Product,
			Switches:     count.Switches,
			LastSwitched: count.LastSwitched,
		})
	}
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	hub := s.daemon.LogStream()
	if hub == nil {
		resp.NextSeq = req.Since
		return nil
	}
	if req.Follow {
		wait := time.Duration(req.WaitMillis) * time.Millisecond
		if wait <= 0 {
			wait = time.Second
		}
		ctx, cancel := context.WithTimeout(s.ctx, wait)
		defer cancel()
		events, next, err := hub.Fetch(ctx, req.Since, req.Limit, true)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return err
		}
		resp.Events = events
		resp.NextSeq = next
		return nil
	}
	events, next := hub.Tail(req.Limit)
	resp.Events = events
	resp.NextSeq = next
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
