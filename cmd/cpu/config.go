package main

type CPUConfig struct {
	IPKernel          string `json:"IP_KERNEL"`
	PortKernel        int    `json:"PUERTO_KERNEL"`
	LogLevel          string `json:"LOG_LEVEL"`
	ConnectionRetries int    `json:"REINTENTOS_CONEXION"`
	InstructionDelay  int    `json:"RETARDO_INSTRUCCION"`
}

var config *CPUConfig
