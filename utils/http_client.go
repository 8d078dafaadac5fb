package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Mensaje es el sobre común de todos los pedidos entre módulos
type Mensaje struct {
	Tipo      int         `json:"tipo"`
	Operacion string      `json:"operacion"`
	Origen    string      `json:"origen"`
	Datos     interface{} `json:"datos"`
}

// EstadoModulo es la respuesta de /health
type EstadoModulo struct {
	Status    string `json:"status"`
	Modulo    string `json:"module"`
	Atendidos uint64 `json:"atendidos"`
	Fallidos  uint64 `json:"fallidos"`
}

// HTTPClient envía mensajes a otro módulo
type HTTPClient struct {
	BaseURL string
	Nombre  string
	client  *http.Client
}

// NewHTTPClient crea un cliente contra ip:puerto
func NewHTTPClient(ip string, puerto int, nombre string) *HTTPClient {
	return NewHTTPClientURL(fmt.Sprintf("http://%s:%d", ip, puerto), nombre)
}

// NewHTTPClientURL crea un cliente HTTP contra una URL base completa
func NewHTTPClientURL(baseURL string, nombre string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Nombre:  nombre,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EnviarHTTPMensaje envía un mensaje y devuelve la respuesta JSON sin tipar
func (c *HTTPClient) EnviarHTTPMensaje(tipo int, operacion string, datos interface{}) (interface{}, error) {
	var resultado interface{}
	if err := c.EnviarHTTPMensajeEn(tipo, operacion, datos, &resultado); err != nil {
		return nil, err
	}
	return resultado, nil
}

// EnviarHTTPMensajeEn envía un mensaje y decodifica la respuesta en destino.
// Con un struct como destino los enteros llegan sin pasar por float64.
func (c *HTTPClient) EnviarHTTPMensajeEn(tipo int, operacion string, datos interface{}, destino interface{}) error {
	cuerpo, err := json.Marshal(Mensaje{
		Tipo:      tipo,
		Operacion: operacion,
		Origen:    c.Nombre,
		Datos:     datos,
	})
	if err != nil {
		return fmt.Errorf("error al serializar mensaje: %w", err)
	}

	resp, err := c.client.Post(c.BaseURL+"/mensaje", "application/json", bytes.NewReader(cuerpo))
	if err != nil {
		return fmt.Errorf("error al enviar mensaje HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detalle, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("respuesta HTTP no exitosa: %d - %s", resp.StatusCode, bytes.TrimSpace(detalle))
	}

	if err := json.NewDecoder(resp.Body).Decode(destino); err != nil {
		return fmt.Errorf("error al decodificar respuesta: %w", err)
	}
	slog.Debug("Mensaje enviado", "origen", c.Nombre, "destino", c.BaseURL, "tipo", tipo, "operacion", operacion)
	return nil
}

// VerificarConexion consulta /health del módulo remoto
func (c *HTTPClient) VerificarConexion() (*EstadoModulo, error) {
	resp, err := c.client.Get(c.BaseURL + "/health")
	if err != nil {
		return nil, fmt.Errorf("error al verificar conexión con %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("estado inesperado al verificar conexión: %d", resp.StatusCode)
	}

	var estado EstadoModulo
	if err := json.NewDecoder(resp.Body).Decode(&estado); err != nil {
		return nil, fmt.Errorf("error al decodificar respuesta de verificación: %w", err)
	}

	slog.Info("Conexión verificada", "destino", c.BaseURL, "módulo", estado.Modulo)
	return &estado, nil
}
