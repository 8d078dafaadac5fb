package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Modulo representa un módulo genérico del sistema
type Modulo struct {
	Nombre      string
	Server      *HTTPServer
	ConfigPath  string
	HandlerFunc map[int]map[string]HTTPHandlerFunc
}

// NuevoModulo crea una nueva instancia de un módulo
func NuevoModulo(nombre string, configPath string) *Modulo {
	return &Modulo{
		Nombre:      nombre,
		ConfigPath:  configPath,
		HandlerFunc: make(map[int]map[string]HTTPHandlerFunc),
	}
}

// RegistrarHandler registra un handler para un tipo de mensaje y operación específicos
func (m *Modulo) RegistrarHandler(tipo int, operacion string, handler HTTPHandlerFunc) {
	if _, existe := m.HandlerFunc[tipo]; !existe {
		m.HandlerFunc[tipo] = make(map[string]HTTPHandlerFunc)
	}
	m.HandlerFunc[tipo][operacion] = handler
}

// Despachar resuelve el handler de un mensaje según tipo y operación.
// Si la operación no tiene handler propio se usa el "default" del tipo.
func (m *Modulo) Despachar(msg *Mensaje) (interface{}, error) {
	handlersPorOperacion, existe := m.HandlerFunc[msg.Tipo]
	if !existe {
		return nil, fmt.Errorf("no hay handlers para el tipo de mensaje %d", msg.Tipo)
	}

	operacion := msg.Operacion
	if operacion == "" {
		operacion = "default"
	}

	handler, existe := handlersPorOperacion[operacion]
	if !existe {
		handler, existe = handlersPorOperacion["default"]
		if !existe {
			slog.Error("No hay handler para operación", "tipo", msg.Tipo, "operacion", operacion)
			return nil, fmt.Errorf("no hay handler para operación %s", operacion)
		}
	}

	return handler(msg)
}

// CrearServidor arma el servidor HTTP del módulo con todos los handlers registrados
func (m *Modulo) CrearServidor(ip string, puerto int) *HTTPServer {
	m.Server = NewHTTPServer(ip, puerto, m.Nombre)
	for tipo := range m.HandlerFunc {
		m.Server.RegisterHTTPHandler(tipo, m.Despachar)
	}
	return m.Server
}

// IniciarServidor crea e inicia el servidor HTTP del módulo en segundo plano
func (m *Modulo) IniciarServidor(ip string, puerto int) {
	server := m.CrearServidor(ip, puerto)

	go func() {
		err := server.Start()
		if err != nil {
			slog.Error("Error al iniciar servidor HTTP", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Servidor HTTP iniciado", "módulo", m.Nombre, "dirección", fmt.Sprintf("%s:%d", ip, puerto))
}

// LeerConfiguracion decodifica un archivo JSON de configuración al tipo pedido
func LeerConfiguracion[T any](ruta string) (*T, error) {
	absPath, err := filepath.Abs(ruta)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo ruta absoluta de %s: %w", ruta, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("error abriendo archivo de configuración %s: %w", absPath, err)
	}
	defer file.Close()

	var config T
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("error decodificando configuración %s: %w", absPath, err)
	}

	return &config, nil
}

// CargarConfiguracion es LeerConfiguracion para el arranque de un módulo:
// cualquier error termina el proceso.
func CargarConfiguracion[T any](ruta string) *T {
	slog.Info("Cargando configuración", "ruta", ruta)

	config, err := LeerConfiguracion[T](ruta)
	if err != nil {
		slog.Error("Error cargando configuración", "error", err, "ruta", ruta)
		os.Exit(1)
	}

	slog.Info("Configuración cargada correctamente")
	return config
}

// ============================================================================
// Constantes para tipos de mensajes entre módulos
// ============================================================================
const (
	// === COMUNICACIÓN BÁSICA (1-9) ===
	MensajeHandshake = 1 // Conexión inicial

	// === MEMORIA DE USUARIO (10-19) ===
	MensajeLeer       = 10 // Leer datos de una dirección virtual
	MensajeEscribir   = 11 // Escribir datos en una dirección virtual
	MensajeMemoryDump = 15 // Volcado de memoria de una tarea

	// === GESTIÓN DE TAREAS (20-29) ===
	MensajeInicializarProceso = 20 // Crear tarea

	// === TRAPS (40-49) ===
	MensajeSyscall = 40 // Trap de syscall con el trapframe de la tarea
)
