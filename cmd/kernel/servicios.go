package main

import (
	"encoding/binary"
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// sysWrite copia una cadena acotada desde el usuario y la emite byte a byte.
// Solo se acepta stdout.
func (k *Kernel) sysWrite(t *Tarea, fd int64, va uint64, largo uint64) (int64, error) {
	if fd != utils.DescriptorStdout {
		return 0, fmt.Errorf("%w: descriptor %d", ErrArgumentoInvalido, fd)
	}

	limite := uint64(utils.MaxLargoCadena)
	if largo < limite {
		limite = largo
	}
	cadena, err := copiarCadenaDesdeUsuario(t.Tabla, va, int(limite))
	if err != nil {
		return 0, err
	}

	for _, c := range cadena {
		k.consola.PutChar(c)
	}
	utils.InfoLog.Debug("sys_write", "pid", t.PID, "va", fmt.Sprintf("%#x", va), "len", largo, "size", len(cadena))
	return int64(len(cadena)), nil
}

// sysExit entrega la tarea al planificador para su destrucción
func (k *Kernel) sysExit(t *Tarea, codigo int) {
	k.planificador.Finalizar(t, codigo)
}

func (k *Kernel) sysYield(t *Tarea) int64 {
	k.planificador.Ceder(t)
	utils.InfoLog.Info(fmt.Sprintf("## (%d) - Yield - Ejecuta: %d", t.PID, k.planificador.Actual().PID))
	return 0
}

// sysGetTimeOfDay escribe un TimeVal {sec, usec} en la memoria del usuario
func (k *Kernel) sysGetTimeOfDay(t *Tarea, va uint64, _ uint64) error {
	sec, usec := cicloATimeVal(k.reloj.Ciclos(), k.config.CPUFrequency)

	var buf [utils.TamTimeVal]byte
	binary.LittleEndian.PutUint64(buf[0:8], sec)
	binary.LittleEndian.PutUint64(buf[8:16], usec)
	return copiarHaciaUsuario(t.Tabla, va, buf[:])
}

func cicloATimeVal(ciclos, frecuencia uint64) (sec, usec uint64) {
	sec = ciclos / frecuencia
	usec = (ciclos % frecuencia) * 1000000 / frecuencia
	return sec, usec
}

// sysTaskInfo escribe {status, syscall_times[500], time} en la memoria del usuario
func (k *Kernel) sysTaskInfo(t *Tarea, va uint64) error {
	transcurrido := (k.reloj.Ciclos() - t.InicioCiclos) * 1000 / k.config.CPUFrequency

	buf := make([]byte, utils.TamTaskInfo)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(t.Estado))
	for id := 0; id < utils.MaxSyscallNum; id++ {
		binary.LittleEndian.PutUint32(buf[4+4*id:], t.Contador(id))
	}
	binary.LittleEndian.PutUint32(buf[utils.TamTaskInfo-4:], uint32(int32(transcurrido)))
	return copiarHaciaUsuario(t.Tabla, va, buf)
}
