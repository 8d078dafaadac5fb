package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

var (
	kernelModulo  *utils.Modulo
	kernelConfig  *KernelConfig
	kernel        *Kernel
	cerrarConsola func() error
)

// inicializarKernel carga la configuración, arma la máquina y levanta el servidor
func inicializarKernel(configPath string) error {
	kernelModulo = utils.NuevoModulo("Kernel", configPath)
	kernelConfig = utils.CargarConfiguracion[KernelConfig](configPath)
	kernelConfig.completarDefaults()

	utils.InicializarLogger(kernelConfig.LogLevel, "Kernel")
	utils.InfoLog.Info("Inicializando Kernel", "config_path", configPath)

	consola, cerrar, err := abrirConsola(kernelConfig)
	if err != nil {
		return fmt.Errorf("error abriendo consola: %w", err)
	}
	cerrarConsola = cerrar

	kernel = NuevoKernel(kernelConfig, nuevoRelojMonotonico(kernelConfig.CPUFrequency), consola)
	utils.InfoLog.Info("Kernel armado",
		"marcos", kernel.pool.Total(),
		"frecuencia", kernelConfig.CPUFrequency,
		"base_heap", fmt.Sprintf("%#x", kernelConfig.HeapBase))

	registrarHandlers(kernelModulo, kernel)
	kernelModulo.IniciarServidor(kernelConfig.IPKernel, kernelConfig.PortKernel)

	utils.InfoLog.Info("Kernel inicializado correctamente")
	return nil
}
