package main

import (
	"errors"
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// Errores recuperables: la tarea recibe -1 en a0 y sigue ejecutando
var (
	ErrArgumentoInvalido    = errors.New("argumento inválido")
	ErrConflicto            = errors.New("la página ya está mapeada")
	ErrRecursosAgotados     = errors.New("no hay marcos libres")
	ErrOperacionDesconocida = errors.New("syscall desconocida")
	ErrDireccionInvalida    = errors.New("dirección de usuario inválida")
	ErrTareaInexistente     = errors.New("no existe la tarea")
)

// ViolacionInvariante indica que la estructura de traducción ya no es confiable.
// No se devuelve como error: se lanza con panic y detiene la máquina.
type ViolacionInvariante struct {
	Motivo string
}

func (v *ViolacionInvariante) Error() string {
	return "violación de invariante: " + v.Motivo
}

// kernelPanic registra la violación y detiene la máquina simulada
func kernelPanic(format string, args ...interface{}) {
	v := &ViolacionInvariante{Motivo: fmt.Sprintf(format, args...)}
	utils.ErrorLog.Error("KERNEL PANIC", "motivo", v.Motivo)
	panic(v)
}
