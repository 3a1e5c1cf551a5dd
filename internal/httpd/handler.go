package httpd

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jzx17/threadpool/pkg/types"
)

// HandlerConfig configures connection handling
type HandlerConfig struct {
	// WebRoot is the directory holding index.html and 404.html
	WebRoot string

	// ResponseDelay is a simulated processing delay applied before writing
	ResponseDelay time.Duration

	// ReadBufferSize bounds how much of the request is read
	ReadBufferSize int

	// ReadTimeout bounds the wait for the request; zero means no deadline
	ReadTimeout time.Duration

	// Clock for the simulated delay (optional, defaults to real clock)
	Clock types.Clock
}

// Handler answers one connection per call to Serve
type Handler struct {
	config HandlerConfig
	logger zerolog.Logger
}

// NewHandler creates a connection handler
func NewHandler(config HandlerConfig, logger zerolog.Logger) *Handler {
	if config.Clock == nil {
		config.Clock = types.NewRealClock()
	}
	if config.ReadBufferSize <= 0 {
		config.ReadBufferSize = 512
	}
	return &Handler{config: config, logger: logger}
}

// Serve handles conn and closes it. Failures are logged, not returned: a
// connection job has nobody to report to.
func (h *Handler) Serve(conn net.Conn) {
	defer conn.Close()

	if err := h.Handle(conn); err != nil {
		h.logger.Error().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("connection failed")
	}
}

// Handle reads a request from conn and writes the matching page
func (h *Handler) Handle(conn net.Conn) error {
	if h.config.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
	}

	buf := make([]byte, h.config.ReadBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	status, page := route(buf[:n])
	body, err := os.ReadFile(filepath.Join(h.config.WebRoot, page))
	if err != nil {
		return fmt.Errorf("read page %s: %w", page, err)
	}

	if h.config.ResponseDelay > 0 {
		h.config.Clock.Sleep(h.config.ResponseDelay)
	}

	resp := Response{Protocol: Protocol, Status: status, Body: string(body)}
	if _, err := conn.Write(resp.Bytes()); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	h.logger.Debug().Str("status", status).Str("page", page).Msg("response sent")
	return nil
}
