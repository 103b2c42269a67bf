// Package http exposes one cube's Send/Receive operations over a small
// HTTP surface, grounded on gocanopen's CiA 309-5 gateway
// (http_gateway_server.go): a regexp-routed request dispatcher built on
// net/http and logged through logrus, scoped down to this stack's two
// operations instead of SDO/PDO/NMT.
package http

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/node"
	"github.com/jordanjohnson-usu/cuberadio/pkg/transport"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

// URIPattern matches /cube/send/{destPort} and /cube/receive, the only two
// operations this gateway exposes against its one underlying cube.
const URIPattern = `/cube/(send/(0x[0-9a-f]{1,2}|\d{1,3})|receive)`

var regURI = regexp.MustCompile(URIPattern)

// DefaultReceiveTimeout is used when a /receive request carries no
// timeout_ms query parameter.
const DefaultReceiveTimeout = 5 * time.Second

// GatewayServer serves one cube's Send/Receive over HTTP.
type GatewayServer struct {
	cube     *node.Cube
	logger   *log.Entry
	serveMux *http.ServeMux
}

// NewGatewayServer builds a gateway fronting cube.
func NewGatewayServer(cube *node.Cube) *GatewayServer {
	g := &GatewayServer{
		cube:   cube,
		logger: log.WithField("layer", "gateway.http"),
	}
	g.serveMux = http.NewServeMux()
	g.serveMux.HandleFunc("/", g.handleRequest)
	g.logger.Info("initializing http gateway endpoints")
	return g
}

// ListenAndServe blocks serving the gateway on addr.
func (g *GatewayServer) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, g.serveMux)
}

type sendResponse struct {
	Error string `json:"error,omitempty"`
}

type receiveResponse struct {
	SourcePort  uint8  `json:"source_port,omitempty"`
	MessageHex  string `json:"message_hex,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (g *GatewayServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	matches := regURI.FindStringSubmatch(r.URL.Path)
	if matches == nil {
		http.NotFound(w, r)
		return
	}

	if matches[1] == "receive" {
		g.handleReceive(w, r)
		return
	}

	destPort, err := parsePort(matches[2])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	g.handleSend(w, r, destPort)
}

func (g *GatewayServer) handleSend(w http.ResponseWriter, r *http.Request, destPort uint8) {
	if r.Method != http.MethodPost {
		http.Error(w, "send requires POST", http.StatusMethodNotAllowed)
		return
	}
	message, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	if err := g.cube.Send(message, destPort); err != nil {
		g.logger.WithError(err).WithField("dest_port", destPort).Warn("send failed")
		writeJSONError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{})
}

func (g *GatewayServer) handleReceive(w http.ResponseWriter, r *http.Request) {
	timeout := DefaultReceiveTimeout
	if raw := r.URL.Query().Get("timeout_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		timeout = time.Duration(ms) * time.Millisecond
	}

	message, sourcePort, err := g.cube.Receive(timeout)
	if err != nil {
		g.logger.WithError(err).WithField("local_port", g.cube.LocalPort()).Debug("receive ended")
		writeJSONError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, receiveResponse{
		SourcePort: sourcePort,
		MessageHex: hex.EncodeToString(message),
	})
}

func parsePort(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("gateway: invalid port %q: %w", s, err)
	}
	return uint8(v), nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, trx.ErrTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, transport.ErrReachedAttemptLimit):
		return http.StatusGatewayTimeout
	case errors.Is(err, transport.ErrUnknownPort):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, receiveResponse{Error: err.Error()})
}
