package main

import (
	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// EstadoTarea se copia tal cual (4 bytes) al TaskInfo del usuario
type EstadoTarea uint32

const (
	TareaSinIniciar EstadoTarea = iota
	TareaLista
	TareaEjecutando
	TareaFinalizada
)

func (e EstadoTarea) String() string {
	switch e {
	case TareaSinIniciar:
		return "UNINIT"
	case TareaLista:
		return "READY"
	case TareaEjecutando:
		return "RUNNING"
	case TareaFinalizada:
		return "EXITED"
	}
	return "DESCONOCIDO"
}

// Trapframe son los registros guardados al entrar por ecall:
// a7 trae el número de syscall, a0..a5 los argumentos, y el resultado vuelve en a0.
type Trapframe struct {
	Regs [8]uint64
}

const (
	regA0 = 0
	regA7 = 7
)

// NuevoTrapframe arma el trapframe de una syscall
func NuevoTrapframe(id uint64, args ...uint64) *Trapframe {
	tf := &Trapframe{}
	tf.Regs[regA7] = id
	copy(tf.Regs[regA0:regA0+6], args)
	return tf
}

func (tf *Trapframe) Numero() uint64 { return tf.Regs[regA7] }

func (tf *Trapframe) Argumentos() [6]uint64 {
	var args [6]uint64
	copy(args[:], tf.Regs[regA0:regA0+6])
	return args
}

func (tf *Trapframe) FijarRetorno(ret int64) { tf.Regs[regA0] = uint64(ret) }
func (tf *Trapframe) Retorno() int64         { return int64(tf.Regs[regA0]) }

// Tarea es el PCB del kernel: espacio de direcciones, heap y contabilidad
type Tarea struct {
	PID          int
	Tabla        *TablaPaginas
	BaseHeap     uint64
	Break        uint64
	Estado       EstadoTarea
	InicioCiclos uint64
	CodigoSalida int
	Metricas     MetricasTarea

	contadores [utils.MaxSyscallNum]uint32
}

// contarSyscall incrementa el contador de id si entra en la tabla
func (t *Tarea) contarSyscall(id uint64) bool {
	if id >= uint64(len(t.contadores)) {
		return false
	}
	t.contadores[id]++
	return true
}

// Contador devuelve cuántas veces la tarea invocó la syscall id
func (t *Tarea) Contador(id int) uint32 {
	if id < 0 || id >= len(t.contadores) {
		return 0
	}
	return t.contadores[id]
}
