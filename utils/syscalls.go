package utils

// Números de syscall del ABI (a7 al momento del trap)
const (
	SyscallWrite        = 64
	SyscallExit         = 93
	SyscallYield        = 124
	SyscallGetTimeOfDay = 169
	SyscallSbrk         = 214
	SyscallMunmap       = 215
	SyscallMmap         = 222
	SyscallTaskInfo     = 410
)

// Constantes expuestas a través del límite usuario/kernel
const (
	TamPagina        = 4096
	MaxSyscallNum    = 500
	MaxLargoMapeo    = 1 << 30
	MaxLargoCadena   = 200
	FrecuenciaCPU    = 12500000
	DescriptorStdout = 1
	PermisoLectura   = 1 << 0
	PermisoEscritura = 1 << 1
	PermisoEjecucion = 1 << 2
	TamTimeVal       = 16
	TamTaskInfo      = 4 + MaxSyscallNum*4 + 4
)

var nombresSyscall = map[int]string{
	SyscallWrite:        "write",
	SyscallExit:         "exit",
	SyscallYield:        "sched_yield",
	SyscallGetTimeOfDay: "gettimeofday",
	SyscallSbrk:         "sbrk",
	SyscallMunmap:       "munmap",
	SyscallMmap:         "mmap",
	SyscallTaskInfo:     "task_info",
}

// NombreSyscall devuelve el nombre legible de una syscall para los logs
func NombreSyscall(id int) string {
	if nombre, ok := nombresSyscall[id]; ok {
		return nombre
	}
	return "desconocida"
}

// SyscallPorNombre resuelve el número de una syscall a partir de su nombre
func SyscallPorNombre(nombre string) (int, bool) {
	for id, n := range nombresSyscall {
		if n == nombre {
			return id, true
		}
	}
	return 0, false
}
