package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

var kernelClient *utils.HTTPClient

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Error: Uso: ./cpu [pid] [script] [archivo_config_opcional]")
		os.Exit(1)
	}

	pid, err := strconv.Atoi(os.Args[1])
	if err != nil || pid < 0 {
		fmt.Printf("Error: el pid debe ser un entero no negativo: %q\n", os.Args[1])
		os.Exit(1)
	}
	rutaScript := os.Args[2]

	inicializarModulo(pid)

	script, err := os.Open(rutaScript)
	if err != nil {
		utils.ErrorLog.Error("No se pudo abrir el script", "script", rutaScript, "error", err)
		os.Exit(1)
	}
	defer script.Close()

	cpu := nuevaCPU(pid, kernelClient, config.InstructionDelay)
	if err := cpu.inicializarTarea(); err != nil {
		utils.ErrorLog.Error("No se pudo inicializar la tarea", "pid", pid, "error", err)
		os.Exit(1)
	}
	if err := cpu.ejecutarScript(script); err != nil {
		utils.ErrorLog.Error("Error ejecutando el script", "pid", pid, "script", rutaScript, "error", err)
		os.Exit(1)
	}

	utils.InfoLog.Info("CPU finalizada correctamente", "pid", pid)
}

func inicializarModulo(pid int) {
	// Determinar archivo de configuración
	var rutaConfig string
	if len(os.Args) >= 4 {
		rutaConfig = os.Args[3]
	} else {
		rutaConfig = filepath.Join("configs", "cpu-config.json")
	}

	if _, err := os.Stat(rutaConfig); os.IsNotExist(err) {
		fmt.Printf("Error: El archivo de configuración '%s' no existe\n", rutaConfig)
		os.Exit(1)
	}

	loggerName := fmt.Sprintf("CPU-%d", pid)
	utils.InicializarLogger("INFO", loggerName)

	config = utils.CargarConfiguracion[CPUConfig](rutaConfig)

	// Actualizar nivel de log
	utils.InicializarLogger(config.LogLevel, loggerName)
	utils.InfoLog.Info("Configuración cargada", "nivel_log", config.LogLevel, "config_path", rutaConfig)

	kernelClient = utils.NewHTTPClient(config.IPKernel, config.PortKernel, loggerName)
	if err := conectarConReintentos(kernelClient, "Kernel", config.ConnectionRetries); err != nil {
		utils.ErrorLog.Error("No se pudo conectar con el Kernel", "error", err)
		os.Exit(1)
	}
}

// conectarConReintentos espera a que el módulo responda /health y hace el handshake
func conectarConReintentos(cliente *utils.HTTPClient, nombre string, reintentos int) error {
	if reintentos <= 0 {
		reintentos = 5
	}

	var err error
	for intento := 1; intento <= reintentos; intento++ {
		if _, err = cliente.VerificarConexion(); err == nil {
			_, err = cliente.EnviarHTTPMensaje(utils.MensajeHandshake, "handshake", map[string]interface{}{
				"nombre": cliente.Nombre,
				"tipo":   "CPU",
			})
			if err == nil {
				utils.InfoLog.Info("Conectado", "modulo", nombre, "intento", intento)
				return nil
			}
		}
		utils.InfoLog.Warn("Reintentando conexión", "modulo", nombre, "intento", intento, "error", err)
		time.Sleep(time.Second)
	}
	return fmt.Errorf("sin respuesta de %s tras %d intentos: %w", nombre, reintentos, err)
}
