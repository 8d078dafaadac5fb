package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// HTTPHandlerFunc es el tipo para los manejadores de mensajes HTTP
type HTTPHandlerFunc func(*Mensaje) (interface{}, error)

// HTTPServer atiende los mensajes de un módulo sobre POST /mensaje
type HTTPServer struct {
	IP        string
	Puerto    int
	Nombre    string
	server    *http.Server
	handlers  map[int]HTTPHandlerFunc
	atendidos atomic.Uint64
	fallidos  atomic.Uint64
}

// NewHTTPServer crea un nuevo servidor HTTP
func NewHTTPServer(ip string, puerto int, nombre string) *HTTPServer {
	s := &HTTPServer{
		IP:       ip,
		Puerto:   puerto,
		Nombre:   nombre,
		handlers: make(map[int]HTTPHandlerFunc),
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", ip, puerto),
		Handler: s.Handler(),
	}
	return s
}

// RegisterHTTPHandler registra un manejador para un tipo específico de mensaje
func (s *HTTPServer) RegisterHTTPHandler(tipoMensaje int, handler HTTPHandlerFunc) {
	s.handlers[tipoMensaje] = handler
}

// Handler arma el mux con los endpoints /mensaje y /health
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mensaje", s.atenderMensaje)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ok",
			"module":    s.Nombre,
			"atendidos": s.atendidos.Load(),
			"fallidos":  s.fallidos.Load(),
		})
	})
	return mux
}

func (s *HTTPServer) atenderMensaje(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var mensaje Mensaje
	if err := json.NewDecoder(r.Body).Decode(&mensaje); err != nil {
		s.fallidos.Add(1)
		http.Error(w, fmt.Sprintf("Error decodificando mensaje: %v", err), http.StatusBadRequest)
		return
	}
	slog.Debug("Mensaje recibido", "módulo", s.Nombre, "tipo", mensaje.Tipo, "operacion", mensaje.Operacion, "origen", mensaje.Origen)

	handler, existe := s.handlers[mensaje.Tipo]
	if !existe {
		s.fallidos.Add(1)
		http.Error(w, fmt.Sprintf("No hay manejador para el tipo de mensaje %d", mensaje.Tipo), http.StatusBadRequest)
		return
	}

	respuesta, err := handler(&mensaje)
	if err != nil {
		s.fallidos.Add(1)
		slog.Error("Error en el manejador", "módulo", s.Nombre, "tipo", mensaje.Tipo, "error", err)
		http.Error(w, fmt.Sprintf("Error en el manejador: %v", err), http.StatusInternalServerError)
		return
	}

	s.atendidos.Add(1)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(respuesta); err != nil {
		slog.Error("Error codificando respuesta", "módulo", s.Nombre, "error", err)
	}
}

// Start inicia el servidor HTTP y bloquea hasta que se detiene
func (s *HTTPServer) Start() error {
	slog.Info("Servidor HTTP escuchando", "módulo", s.Nombre, "dirección", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Detener cierra el servidor esperando a que terminen los mensajes en curso
func (s *HTTPServer) Detener(ctx context.Context) error {
	slog.Info("Deteniendo servidor HTTP", "módulo", s.Nombre, "atendidos", s.atendidos.Load(), "fallidos", s.fallidos.Load())
	return s.server.Shutdown(ctx)
}
