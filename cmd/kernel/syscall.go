package main

import (
	"errors"
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// syscall decodifica el trapframe, cuenta la invocación y despacha al servicio.
// Devuelve true cuando la tarea terminó con exit: en ese caso a0 no se toca.
func (k *Kernel) syscall(t *Tarea, tf *Trapframe) bool {
	id := tf.Numero()
	args := tf.Argumentos()
	utils.InfoLog.Debug("syscall",
		"pid", t.PID,
		"id", id,
		"nombre", utils.NombreSyscall(int(id)),
		"args", fmt.Sprintf("[%#x, %#x, %#x, %#x, %#x, %#x]", args[0], args[1], args[2], args[3], args[4], args[5]))

	if !t.contarSyscall(id) {
		utils.InfoLog.Warn("Syscall fuera de la tabla de contadores", "pid", t.PID, "id", id)
	}

	var (
		ret int64
		err error
	)
	switch id {
	case utils.SyscallWrite:
		ret, err = k.sysWrite(t, int64(args[0]), args[1], args[2])
	case utils.SyscallExit:
		k.sysExit(t, int(int32(args[0])))
		return true
	case utils.SyscallYield:
		ret = k.sysYield(t)
	case utils.SyscallGetTimeOfDay:
		err = k.sysGetTimeOfDay(t, args[0], args[1])
	case utils.SyscallSbrk:
		var anterior uint64
		anterior, err = k.sysSbrk(t, int64(args[0]))
		ret = int64(anterior)
	case utils.SyscallMmap:
		err = k.sysMmap(t, args[0], args[1], args[2], args[3], int64(args[4]))
	case utils.SyscallMunmap:
		err = k.sysMunmap(t, args[0], args[1])
	case utils.SyscallTaskInfo:
		err = k.sysTaskInfo(t, args[0])
	default:
		err = fmt.Errorf("%w: %d", ErrOperacionDesconocida, id)
	}

	if err != nil {
		ret = -1
		if errors.Is(err, ErrOperacionDesconocida) {
			utils.ErrorLog.Error("Syscall desconocida", "pid", t.PID, "id", id)
		} else {
			utils.InfoLog.Info("Syscall fallida", "pid", t.PID, "syscall", utils.NombreSyscall(int(id)), "error", err)
		}
	}

	tf.FijarRetorno(ret)
	utils.InfoLog.Debug("syscall ret", "pid", t.PID, "ret", ret)
	return false
}
