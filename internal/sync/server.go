package sync

import (
	"bufio"
	"context"
	"errors"
	"net"

	"streamhub/internal/logging"
)

// Server accepts line-oriented TCP sync clients.
type Server struct {
	Addr string
	Hub  *Hub
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

// Run listens until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	logging.Info().Str("addr", ln.Addr().String()).Msg("tcp sync listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Warn().Err(err).Msg("tcp sync accept failed")
			continue
		}

		s.Hub.Add(conn)
		_, _ = conn.Write(s.Hub.welcome("tcp"))
		logging.Debug().Str("remote", conn.RemoteAddr().String()).Msg("tcp sync client connected")

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				logging.Debug().Str("remote", c.RemoteAddr().String()).Msg("tcp sync client disconnected")
			}()

			// incoming lines are ignored
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}
