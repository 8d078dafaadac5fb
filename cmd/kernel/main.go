package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

func main() {
	utils.InicializarLogger("INFO", "Kernel")
	utils.InfoLog.Info("Kernel iniciando", "args", os.Args)

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Uso: %s <archivo_configuracion> [pid_inicial...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ejemplo: %s configs/kernel-config.json 0\n", os.Args[0])
		os.Exit(1)
	}

	configPath := os.Args[1]
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		utils.ErrorLog.Error("El archivo de configuración no existe", "archivo", configPath)
		os.Exit(1)
	}

	if err := inicializarKernel(configPath); err != nil {
		utils.ErrorLog.Error("Error durante la inicialización del Kernel", "error", err)
		os.Exit(1)
	}

	// Tareas iniciales pedidas por línea de comandos
	for _, arg := range os.Args[2:] {
		pid, err := strconv.Atoi(arg)
		if err != nil {
			utils.ErrorLog.Error("El PID inicial debe ser un número entero", "error", err, "valor", arg)
			os.Exit(1)
		}
		if _, err := kernel.CrearTarea(pid); err != nil {
			utils.ErrorLog.Error("No se pudo crear la tarea inicial", "pid", pid, "error", err)
			os.Exit(1)
		}
	}

	utils.InfoLog.Info("Kernel listo y esperando traps")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	utils.InfoLog.Info("Señal recibida. Finalizando Kernel")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := kernelModulo.Server.Detener(ctx); err != nil {
		utils.ErrorLog.Error("Error deteniendo el servidor", "error", err)
	}
	if cerrarConsola != nil {
		if err := cerrarConsola(); err != nil {
			utils.ErrorLog.Error("Error cerrando consola", "error", err)
		}
	}
}
