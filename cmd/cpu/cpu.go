package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// CPU ejecuta el script de una tarea: loads/stores contra su memoria virtual y
// ecalls que se resuelven como traps en el kernel
type CPU struct {
	pid        int
	kernel     *utils.HTTPClient
	retardo    int
	finalizada bool
}

func nuevaCPU(pid int, kernel *utils.HTTPClient, retardo int) *CPU {
	return &CPU{pid: pid, kernel: kernel, retardo: retardo}
}

// respuestaKernel cubre todas las respuestas del kernel
type respuestaKernel struct {
	Status  string `json:"status"`
	Mensaje string `json:"mensaje"`
	PID     int    `json:"pid"`
	Retorno int64  `json:"retorno"`
	Datos   string `json:"datos"`
	Hex     string `json:"hex"`
}

// enviar manda un mensaje al kernel y convierte un status ERROR en error.
// La respuesta es nil solo si falló el transporte.
func (c *CPU) enviar(tipo int, operacion string, datos map[string]interface{}) (*respuestaKernel, error) {
	var r respuestaKernel
	if err := c.kernel.EnviarHTTPMensajeEn(tipo, operacion, datos, &r); err != nil {
		return nil, err
	}
	if r.Status == "ERROR" {
		return &r, fmt.Errorf("el kernel respondió error: %s", r.Mensaje)
	}
	return &r, nil
}

// inicializarTarea le pide al kernel que cree el espacio de direcciones de la tarea
func (c *CPU) inicializarTarea() error {
	if _, err := c.enviar(utils.MensajeInicializarProceso, "INIT_PROC", map[string]interface{}{
		"pid": c.pid,
	}); err != nil {
		return err
	}
	utils.InfoLog.Info("Tarea inicializada en el kernel", "pid", c.pid)
	return nil
}

// trap arma el trapframe y lo manda al kernel. Devuelve lo que quedó en a0.
func (c *CPU) trap(id int, args []int64) (int64, error) {
	if args == nil {
		args = []int64{}
	}
	r, err := c.enviar(utils.MensajeSyscall, utils.NombreSyscall(id), map[string]interface{}{
		"pid":  c.pid,
		"id":   id,
		"args": args,
	})
	if err != nil {
		return 0, err
	}
	if r.Status == "FINALIZADO" {
		c.finalizada = true
		return 0, nil
	}
	return r.Retorno, nil
}

// ejecutar corre una instrucción ya decodificada
func (c *CPU) ejecutar(inst Instruccion) error {
	switch inst.Operacion {
	case "NOOP":
		return nil

	case "STORE":
		r, err := c.enviar(utils.MensajeEscribir, "STORE", map[string]interface{}{
			"pid":       c.pid,
			"direccion": inst.Args[0],
			"datos":     inst.Texto,
		})
		if r == nil {
			return err
		}
		if err != nil {
			utils.ErrorLog.Error("Fallo de página en STORE", "pid", c.pid, "direccion", fmt.Sprintf("%#x", inst.Args[0]), "error", err)
		}
		return nil

	case "LOAD":
		r, err := c.enviar(utils.MensajeLeer, "LOAD", map[string]interface{}{
			"pid":       c.pid,
			"direccion": inst.Args[0],
			"tamanio":   inst.Args[1],
		})
		if r == nil {
			return err
		}
		if err != nil {
			utils.ErrorLog.Error("Fallo de página en LOAD", "pid", c.pid, "direccion", fmt.Sprintf("%#x", inst.Args[0]), "error", err)
			return nil
		}
		utils.InfoLog.Info(fmt.Sprintf("PID: %d - LOAD %#x", c.pid, inst.Args[0]), "datos", r.Datos, "hex", r.Hex)
		return nil
	}

	retorno, err := c.trap(inst.Syscall, inst.Args)
	if err != nil {
		return err
	}
	if c.finalizada {
		utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Finalizada con %s", c.pid, inst.Operacion))
		return nil
	}
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - %s - Retorno: %d", c.pid, utils.NombreSyscall(inst.Syscall), retorno))
	return nil
}

// ejecutarScript recorre el script línea por línea hasta el final o hasta exit.
// Si el script no termina con exit, se hace exit(0) implícito.
func (c *CPU) ejecutarScript(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	numero := 0
	for scanner.Scan() && !c.finalizada {
		numero++
		inst, err := decodificar(scanner.Text())
		if err != nil {
			return fmt.Errorf("línea %d: %w", numero, err)
		}
		if inst.Operacion == "" {
			continue
		}

		utils.AplicarRetardo("instruccion", c.retardo)
		utils.InfoLog.Info(fmt.Sprintf("PID: %d - Ejecutando: %s", c.pid, scanner.Text()))
		if err := c.ejecutar(inst); err != nil {
			return fmt.Errorf("línea %d: %w", numero, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error leyendo script: %w", err)
	}

	if !c.finalizada {
		utils.InfoLog.Info("Fin del script sin EXIT, se finaliza la tarea", "pid", c.pid)
		if _, err := c.trap(utils.SyscallExit, []int64{0}); err != nil {
			return err
		}
	}
	return nil
}
