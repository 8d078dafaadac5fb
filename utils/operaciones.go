package utils

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// AplicarRetardo aplica un retardo simulado y lo registra
func AplicarRetardo(operacion string, duracionMs int) {
	if duracionMs <= 0 {
		return
	}
	slog.Debug("Aplicando retardo", "operación", operacion, "duración_ms", duracionMs)
	time.Sleep(time.Duration(duracionMs) * time.Millisecond)
}

// DatosMensaje devuelve el mapa de datos de un mensaje
func DatosMensaje(msg *Mensaje) (map[string]interface{}, error) {
	datos, ok := msg.Datos.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("datos inválidos en mensaje tipo %d", msg.Tipo)
	}
	return datos, nil
}

// ExtraerEntero lee un campo numérico de los datos de un mensaje.
// JSON decodifica los números como float64, así que se aceptan ambas formas.
func ExtraerEntero(datos map[string]interface{}, clave string) (int64, bool) {
	switch v := datos[clave].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case string:
		if val, err := strconv.ParseInt(v, 0, 64); err == nil {
			return val, true
		}
	}
	return 0, false
}

// ExtraerEnteros lee un arreglo numérico de los datos de un mensaje
func ExtraerEnteros(datos map[string]interface{}, clave string) ([]int64, bool) {
	crudo, ok := datos[clave].([]interface{})
	if !ok {
		return nil, false
	}
	valores := make([]int64, 0, len(crudo))
	for i := range crudo {
		v, ok := ExtraerEntero(map[string]interface{}{"v": crudo[i]}, "v")
		if !ok {
			return nil, false
		}
		valores = append(valores, v)
	}
	return valores, true
}
