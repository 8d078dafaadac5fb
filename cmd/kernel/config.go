package main

import "github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"

// KernelConfig define la configuración del módulo Kernel
type KernelConfig struct {
	IPKernel     string `json:"IP_KERNEL"`
	PortKernel   int    `json:"PUERTO_KERNEL"`
	LogLevel     string `json:"LOG_LEVEL"`
	MemorySize   int    `json:"TAM_MEMORIA"`    // Techo de memoria física en bytes
	CPUFrequency uint64 `json:"FRECUENCIA_CPU"` // Ciclos por segundo del contador
	HeapBase     uint64 `json:"BASE_HEAP"`      // Break inicial de cada tarea
	Console      string `json:"CONSOLA"`        // "stdout" o "tty"
	TTYPath      string `json:"TTY_PATH"`
	DumpPath     string `json:"DUMP_PATH"`
	DumpImage    bool   `json:"DUMP_IMAGEN"` // Además del .dmp, un PNG con el mapa de páginas
	SyscallDelay int    `json:"RETARDO_SYSCALL"`
}

// completarDefaults llena los campos que la configuración dejó vacíos
func (c *KernelConfig) completarDefaults() {
	if c.MemorySize <= 0 {
		c.MemorySize = 8 * 1024 * 1024
	}
	if c.CPUFrequency == 0 {
		c.CPUFrequency = utils.FrecuenciaCPU
	}
	if c.HeapBase == 0 {
		c.HeapBase = 0x10000
	}
	c.HeapBase = redondearArriba(c.HeapBase)
	if c.DumpPath == "" {
		c.DumpPath = "dumps"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
}
